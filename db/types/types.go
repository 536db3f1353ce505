package types

// Migration is a sql-migrate migration written as a single file with the Down part first,
// separated from the Up part by "-- +migrate Up"
type Migration struct {
	ID     string
	SQL    string
	Prefix string
}
