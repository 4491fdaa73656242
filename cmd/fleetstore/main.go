package main

import (
	"flag"
	"os"

	"github.com/cloudcache/fleetstore/internal/conn"
)

func main() {
	cwd, _ := os.Getwd()

	write_path := flag.String("db", cwd+"/fleet.snap", "path to save model snapshots")
	in_mem := flag.Bool("m", false, "don't persist the model")
	write_interval := flag.Int("i", 1000, "snapshot write interval in ms")
	port := flag.Int("port", 7085, "listening port")
	username := flag.String("user", "", "root username (empty for an open instance)")
	password := flag.String("pass", "", "root password")
	should_log := flag.Bool("log", true, "enable logging")
	debug_logs := flag.Bool("dbg", false, "show debug logs")

	flag.Parse()

	s := conn.NewServer(
		conn.AuthSettings{Username: *username, Password: *password},
		conn.NewWriteSettings(*write_path, *in_mem, *write_interval),
		conn.LogOptions{Should_log: *should_log, Show_debug_logs: *debug_logs},
	)
	s.Listen(*port)
}
