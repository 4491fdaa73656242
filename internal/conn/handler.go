package conn

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cloudcache/fleetstore/internal/auth"
	"github.com/cloudcache/fleetstore/internal/store"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__fs_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

func ActionHandler(s *Server, action RequestAction, ctx *ConnCtx, raw []byte) Response {
	if action.IsReadOnly() {
		if !ctx.User.HasClearance(auth.UserRoleReadOnly) {
			return NewErrorResponse(http.StatusForbidden, auth.InsufficientPermissions.Error())
		}
		s.Locker.RLock()
		defer s.Locker.RUnlock()
	} else {
		if !ctx.User.HasClearance(auth.UserRoleReadWrite) {
			return NewErrorResponse(http.StatusForbidden, auth.InsufficientPermissions.Error())
		}
		s.Locker.Lock()
		defer s.Locker.Unlock()
	}

	switch action {
	case RequestActionApply:
		return ApplyReqHandler(s.Model, raw)
	case RequestActionApplyMany:
		return ApplyManyReqHandler(s.Model, raw)
	case RequestActionGet:
		return GetReqHandler(s.Model, raw)
	case RequestActionFind:
		return FindReqHandler(s.Model, raw)
	case RequestActionDump:
		return DumpReqHandler(s.Model, raw)
	case RequestActionLoad:
		return LoadReqHandler(s.Model, raw)
	case RequestActionTables:
		return TablesReqHandler(s.Model)
	case RequestActionStats:
		return StatsReqHandler(s.Model)
	default:
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
	}
}

func validState(state store.State) bool {
	return state == store.StateDesired || state == store.StateCurrent
}

// ApplyArg is one row patch. An absent part clears the state; an
// absent pkey is derived from the part's primary key fields.
type ApplyArg struct {
	Table string      `json:"table"`
	Pkey  []any       `json:"pkey"`
	State store.State `json:"state"`
	Part  store.Part  `json:"part"`
}

func resolvePkey(table *store.Table, arg ApplyArg) (store.PKey, error) {
	if len(arg.Pkey) > 0 {
		if len(arg.Pkey) != len(table.PkeyFields) {
			return "", fmt.Errorf("table %s expects %d primary key values, got %d",
				table.Name, len(table.PkeyFields), len(arg.Pkey))
		}
		return store.MakePKey(arg.Pkey...), nil
	}

	if arg.Part == nil {
		return "", fmt.Errorf("patch with no part must carry an explicit pkey")
	}
	vals := make([]any, len(table.PkeyFields))
	for i, field := range table.PkeyFields {
		v, ok := arg.Part[field]
		if !ok {
			return "", fmt.Errorf("part missing primary key field %q", field)
		}
		vals[i] = v
	}
	return store.MakePKey(vals...), nil
}

func applyOne(m *store.Model, arg ApplyArg) (*store.Row, error) {
	if !validState(arg.State) {
		return nil, fmt.Errorf("invalid state tag %q", arg.State)
	}
	table, err := m.Table(arg.Table)
	if err != nil {
		return nil, err
	}
	pkey, err := resolvePkey(table, arg)
	if err != nil {
		return nil, err
	}

	table.UpdateRow(pkey, arg.State, arg.Part)

	// nil row means the patch removed the last state part
	row, _ := table.Get(pkey)
	return row, nil
}

func ApplyReqHandler(m *store.Model, raw []byte) Response {
	var req ApplyArg
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	row, err := applyOne(m, req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if row == nil {
		return NewResponse(http.StatusOK,
			fmt.Sprintf("Removed row from table %s", req.Table), nil)
	}
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Patched row in table %s", req.Table), row)
}

type ApplyManyRequest struct {
	Patches []ApplyArg `json:"patches"`
}

func ApplyManyReqHandler(m *store.Model, raw []byte) Response {
	var req ApplyManyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	for i, arg := range req.Patches {
		if _, err := applyOne(m, arg); err != nil {
			return NewErrorResponse(http.StatusBadRequest,
				fmt.Sprintf("patch %d: %s", i, err.Error()))
		}
	}
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Applied %d patches", len(req.Patches)), nil)
}

type GetRequest struct {
	Table string `json:"table"`
	Pkey  []any  `json:"pkey"`
}

func GetReqHandler(m *store.Model, raw []byte) Response {
	var req GetRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	table, err := m.Table(req.Table)
	if err != nil {
		return NewErrorResponse(http.StatusNotFound, err.Error())
	}
	if len(req.Pkey) == 0 {
		return NewErrorResponse(http.StatusBadRequest, "missing pkey")
	}

	row, err := table.Get(store.MakePKey(req.Pkey...))
	if err != nil {
		return NewErrorResponse(http.StatusNotFound, err.Error())
	}
	return NewResponse(http.StatusOK, "Found row", row)
}

type FindRequest struct {
	Table string         `json:"table"`
	Where map[string]any `json:"where"`
}

func FindReqHandler(m *store.Model, raw []byte) Response {
	var req FindRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	table, err := m.Table(req.Table)
	if err != nil {
		return NewErrorResponse(http.StatusNotFound, err.Error())
	}

	rows := table.List(req.Where)
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Found %d rows in table %s", len(rows), req.Table), rows)
}

type DumpRequest struct {
	States []store.State `json:"states"`
}

func DumpReqHandler(m *store.Model, raw []byte) Response {
	var req DumpRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	for _, state := range req.States {
		if !validState(state) {
			return NewErrorResponse(http.StatusBadRequest,
				fmt.Sprintf("invalid state tag %q", state))
		}
	}

	entries := m.Dump(req.States...)
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Dumped %d entries", len(entries)), entries)
}

type LoadRequest struct {
	Entries []store.Entry `json:"entries"`
}

func LoadReqHandler(m *store.Model, raw []byte) Response {
	var req LoadRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	for _, e := range req.Entries {
		if !validState(e.State) {
			return NewErrorResponse(http.StatusBadRequest,
				fmt.Sprintf("invalid state tag %q", e.State))
		}
	}

	if err := m.Load(req.Entries); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Loaded %d entries", len(req.Entries)), nil)
}

type TableInfo struct {
	Name        string   `json:"name"`
	Virtual     bool     `json:"virtual"`
	Pkey        []string `json:"pkey"`
	Indexes     []string `json:"indexes"`
	JoinIndexes []string `json:"join_indexes"`
}

func TablesReqHandler(m *store.Model) Response {
	infos := []TableInfo{}
	for _, name := range m.Names() {
		table, _ := m.Table(name)
		joins := []string{}
		for _, nm := range table.NMIndexes {
			joins = append(joins, nm.Remote)
		}
		infos = append(infos, TableInfo{
			Name:        table.Name,
			Virtual:     table.Virtual,
			Pkey:        table.PkeyFields,
			Indexes:     table.Indexes,
			JoinIndexes: joins,
		})
	}
	return NewResponse(http.StatusOK, "Table schema", infos)
}

func StatsReqHandler(m *store.Model) Response {
	stats := map[string]int{}
	total := 0
	for _, name := range m.Names() {
		table, _ := m.Table(name)
		stats[name] = table.Len()
		total += table.Len()
	}
	return NewResponse(http.StatusOK,
		fmt.Sprintf("%d rows in %d tables", total, len(stats)), stats)
}
