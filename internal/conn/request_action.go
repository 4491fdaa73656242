package conn

type RequestAction string

const (
	// row actions
	RequestActionApply     RequestAction = "apply"
	RequestActionApplyMany RequestAction = "applyMany"
	RequestActionGet       RequestAction = "get"
	RequestActionFind      RequestAction = "find"

	// snapshot actions
	RequestActionDump RequestAction = "dump"
	RequestActionLoad RequestAction = "load"

	// schema actions
	RequestActionTables RequestAction = "tables"
	RequestActionStats  RequestAction = "stats"
)

func (action RequestAction) IsReadOnly() bool {
	return action == RequestActionGet || action == RequestActionFind ||
		action == RequestActionDump || action == RequestActionTables ||
		action == RequestActionStats
}
