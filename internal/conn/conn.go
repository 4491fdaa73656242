package conn

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cloudcache/fleetstore/internal/auth"
	"github.com/cloudcache/fleetstore/pkg"
)

type WsRequest struct {
	Action RequestAction `json:"action"`
	ReqId  int           `json:"__fs_client_req_id__"` // echoed back for clients
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const maxConnAttempts = 3

type ConnCtx struct {
	conn     *websocket.Conn
	attempts int
	isAuthed bool

	User *auth.User
}

// New connections get a 30 second deadline to authenticate.
func NewConnCtx(c *websocket.Conn) *ConnCtx {
	c.SetReadDeadline(time.Now().Add(30 * time.Second))
	return &ConnCtx{conn: c}
}

func (ctx *ConnCtx) SetAuthed() {
	ctx.isAuthed = true
	ctx.conn.SetReadDeadline(time.Time{})
}

func (ctx *ConnCtx) WriteResponse(r Response) error {
	return ctx.conn.WriteJSON(r)
}

type ConnRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func ConnValidate(s *Server, r ConnRequest) *auth.User {
	if r.Username == "" {
		return nil
	}
	for _, u := range s.Users {
		if u.Name == r.Username && u.ValidatePassword(r.Password) {
			return u
		}
	}
	return nil
}

func (s *Server) tryConnect(ctx *ConnCtx, buf []byte) error {
	// no users configured means an open instance
	if len(s.Users) == 0 {
		ctx.User = &auth.User{Name: "anonymous", Role: auth.UserRoleAdmin}
		ctx.SetAuthed()
		return ctx.WriteResponse(NewResponse(http.StatusOK, "connected", nil))
	}

	var r ConnRequest
	if err := json.Unmarshal(buf, &r); err != nil {
		ctx.WriteResponse(NewErrorResponse(http.StatusBadRequest, err.Error()))
		return err
	}

	ctx.User = ConnValidate(s, r)
	if ctx.User == nil {
		return ctx.WriteResponse(NewErrorResponse(http.StatusUnauthorized, "invalid auth"))
	}

	ctx.SetAuthed()
	return ctx.WriteResponse(NewResponse(http.StatusOK, "connected", nil))
}

func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}
	defer conn.Close()
	defer pkg.InfoLog("connection closed from", conn.RemoteAddr())

	ctx := NewConnCtx(conn)
	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("conn read error", err)
			}
			return
		}

		if !ctx.isAuthed {
			if ctx.attempts == maxConnAttempts {
				pkg.ErrorLog("max connection attempts reached")
				return
			}
			ctx.attempts += 1
			if err := s.tryConnect(ctx, buf); err != nil {
				pkg.ErrorLog("conn attempt error", err)
				return
			}
			continue
		}

		var req WsRequest
		if err := json.Unmarshal(buf, &req); err != nil {
			pkg.ErrorLog("parsing request", err)
			continue
		}

		res := ActionHandler(s, req.Action, ctx, buf)
		res.ReqId = req.ReqId

		if err := ctx.WriteResponse(res); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}

		if !req.Action.IsReadOnly() {
			pkg.LockWrap(s, func() {
				s.last_change = time.Now()
			})
		}
	}
}
