package main

import (
	"flag"
	"os"

	"github.com/minisql/minisql/internal/auth"
	"github.com/minisql/minisql/internal/conn"
	"github.com/minisql/minisql/internal/engine"
	"github.com/minisql/minisql/pkg"
)

func main() {
	data_dir := flag.String("dir", "data", "directory holding per-database .dat files")
	web := flag.Bool("web", false, "serve the web UI instead of the interactive shell")
	host := flag.String("host", "127.0.0.1", "host for the web UI")
	port := flag.Int("port", 8000, "port for the web UI")
	should_log := flag.Bool("log", true, "enable logging")
	debug := flag.Bool("dbg", false, "show debug logs")

	flag.Parse()

	if !*should_log {
		pkg.SetLogLevel(pkg.LogLevelNone)
	} else if *debug {
		pkg.SetLogLevel(pkg.LogLevelDebug)
	} else {
		pkg.SetLogLevel(pkg.LogLevelErrOnly)
	}

	eng, err := engine.New(*data_dir)
	if err != nil {
		pkg.FatalLog("opening data directory", err)
	}
	defer eng.Close()

	if !*web {
		conn.Shell(eng)
		return
	}

	var user *auth.User
	if name := os.Getenv("MINISQL_USER"); name != "" {
		user = auth.NewUser(name, os.Getenv("MINISQL_PASS"))
	}
	conn.NewServer(eng, user).Listen(*host, *port)
}
