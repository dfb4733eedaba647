package db

import (
	"errors"
	"fmt"
	"strings"
)

// Supported database backends.
const (
	SQLite   = "sqlite"
	MySQL    = "mysql"
	Postgres = "postgres"
)

var (
	ErrUnsupportedBackend = errors.New("unsupported database backend")
	ErrMissingDatabase    = errors.New("database name is required")
)

// URIParams carries the pieces a connection URI is assembled from. Empty
// strings mean the caller never provided the value.
type URIParams struct {
	Backend  string
	Username string
	Password string
	Hostname string
	Database string
	Path     string
}

// BuildURI assembles a storm style connection URI from params. The backend
// must be one of sqlite, mysql or postgres. Supplying a hostname or a
// username makes the database name mandatory, no matter the backend.
func BuildURI(params URIParams) (string, error) {
	backend := strings.ToLower(params.Backend)
	switch backend {
	case SQLite, MySQL, Postgres:
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedBackend, params.Backend)
	}

	if (params.Hostname != "" || params.Username != "") && params.Database == "" {
		return "", fmt.Errorf("%w when a hostname or username is given", ErrMissingDatabase)
	}

	if backend == SQLite {
		return "sqlite:" + params.Path, nil
	}

	host := params.Hostname
	if host == "" {
		host = "localhost"
	}

	var b strings.Builder
	b.WriteString(backend)
	b.WriteString("://")
	if params.Username != "" {
		b.WriteString(params.Username)
		if params.Password != "" {
			b.WriteString(":")
			b.WriteString(params.Password)
		}
		b.WriteString("@")
	}
	b.WriteString(host)
	b.WriteString("/")
	b.WriteString(params.Database)
	return b.String(), nil
}

// ParseURI splits a connection URI produced by BuildURI back into its
// parts. It understands just enough of the grammar for the commands that
// need to open a live connection.
func ParseURI(uri string) (URIParams, error) {
	if rest, ok := strings.CutPrefix(uri, "sqlite:"); ok {
		return URIParams{Backend: SQLite, Path: rest}, nil
	}

	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return URIParams{}, fmt.Errorf("%w: %s", ErrUnsupportedBackend, uri)
	}
	if scheme != MySQL && scheme != Postgres {
		return URIParams{}, fmt.Errorf("%w: %s", ErrUnsupportedBackend, scheme)
	}

	params := URIParams{Backend: scheme}
	if creds, hostPart, found := strings.Cut(rest, "@"); found {
		user, pass, _ := strings.Cut(creds, ":")
		params.Username = user
		params.Password = pass
		rest = hostPart
	}
	host, database, _ := strings.Cut(rest, "/")
	params.Hostname = host
	params.Database = database
	return params, nil
}
