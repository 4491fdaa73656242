package store

// The fleet schema. Field contents are opaque to the store; only the
// primary key shape, the indexed columns and the join relations
// matter here. Virtual tables live in memory only and are not backed
// by the control plane database.
var TableSpecs = []TableSpec{
	{Name: "address", Indexes: []string{"network", "vnic"}},
	{Name: "bond", Indexes: []string{"host"}},
	{Name: "cluster", Indexes: []string{"tenant"}},
	{Name: "cluster_instance", Indexes: []string{"cluster", "instance"}},
	{Name: "cpu_profile",
		NMIndexes: map[string]NMSpec{
			"host_cpu_profile": {Local: "cpu_profile", Remote: "host"},
		}},
	{Name: "disk", Pkey: []string{"id"}, Indexes: []string{"raid"},
		NMIndexes: map[string]NMSpec{
			"host_disk": {Local: "disk", Remote: "host"},
		}},
	{Name: "extent", Indexes: []string{"volume", "storage_pool"}},
	{Name: "host",
		NMIndexes: map[string]NMSpec{
			"host_disk":     {Local: "host", Remote: "disk"},
			"host_instance": {Local: "host", Remote: "instance"},
		}},
	{Name: "image", Indexes: []string{"tenant"},
		NMIndexes: map[string]NMSpec{
			"tenant_image": {Local: "image", Remote: "tenant"},
		}},
	{Name: "instance", Indexes: []string{"cpu_profile", "tenant"},
		NMIndexes: map[string]NMSpec{
			"host_instance": {Local: "instance", Remote: "host"},
		}},
	{Name: "logical_volume", Indexes: []string{"storage_pool", "raid"}},
	{Name: "member", Indexes: []string{"tenant", "user"}},
	{Name: "network", Indexes: []string{"switch"}},
	{Name: "nic", Pkey: []string{"hwaddr"}, Indexes: []string{"bond"}},
	{Name: "nic_role", Indexes: []string{"bond"}},
	{Name: "quota", Indexes: []string{"tenant"}},
	{Name: "raid", Indexes: []string{"host"}},
	{Name: "route", Indexes: []string{"network"}},
	{Name: "storage_pool"},
	{Name: "switch", Indexes: []string{"tenant"},
		NMIndexes: map[string]NMSpec{
			"tenant_switch": {Local: "switch", Remote: "tenant"},
		}},
	{Name: "tenant",
		NMIndexes: map[string]NMSpec{
			"tenant_switch": {Local: "tenant", Remote: "switch"},
		}},
	{Name: "tenant_image", Pkey: []string{"tenant", "image"},
		Indexes: []string{"tenant", "image"}},
	{Name: "tenant_switch", Pkey: []string{"tenant", "switch"},
		Indexes: []string{"tenant", "switch"}},
	{Name: "user", Pkey: []string{"email"}},
	{Name: "vdisk", Indexes: []string{"instance", "volume"}},
	{Name: "vnic", Indexes: []string{"instance", "switch"}},
	{Name: "volume", Indexes: []string{"tenant", "storage_pool"}},
	{Name: "host_disk", Virtual: true, Pkey: []string{"host", "disk"},
		Indexes: []string{"host", "disk"}},
	{Name: "host_instance", Virtual: true, Pkey: []string{"host", "instance"},
		Indexes: []string{"host", "instance"}},
	{Name: "host_cpu_profile", Virtual: true,
		Indexes: []string{"host", "cpu_profile"}},
}
