package keaconfig

// Supported lease database types.
const (
	DatabaseTypeMemfile    = "memfile"
	DatabaseTypeMySQL      = "mysql"
	DatabaseTypePostgreSQL = "postgresql"
)

// A structure representing the database connection parameters. It is common
// for all supported backend types. The memfile backend uses the name as the
// lease file path.
type Database struct {
	Type        string  `json:"type"`
	Name        string  `json:"name,omitempty"`
	Host        string  `json:"host,omitempty"`
	Port        *int64  `json:"port,omitempty"`
	User        string  `json:"user,omitempty"`
	Password    string  `json:"password,omitempty"`
	Persist     *bool   `json:"persist,omitempty"`
	LFCInterval *int64  `json:"lfc-interval,omitempty"`
	Path        *string `json:"path,omitempty"`
}

// Checks if the database type is supported.
func IsSupportedDatabaseType(dbType string) bool {
	switch dbType {
	case DatabaseTypeMemfile, DatabaseTypeMySQL, DatabaseTypePostgreSQL:
		return true
	default:
		return false
	}
}
