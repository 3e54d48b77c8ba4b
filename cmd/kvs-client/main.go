// Command kvs-client sends a single request to a kvs-server and prints the
// response. It is not a REPL: one invocation, one request, one line of
// output.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arlindo/kvs/internal/clientlib"
	"github.com/arlindo/kvs/internal/vector"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "server address")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	c, err := clientlib.Dial(*addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	switch args[0] {
	case "get":
		requireArgs(args, 2, "get <key>")
		v, err := c.Get(args[1])
		must(v, err)

	case "set":
		requireArgs(args, 3, "set <key> <value>")
		must("", c.Set(args[1], args[2]))

	case "rm":
		requireArgs(args, 2, "rm <key>")
		must("", c.Remove(args[1]))

	case "scan":
		requireArgs(args, 3, "scan <start> <end>")
		v, err := c.Scan(args[1], args[2])
		must(v, err)

	case "vget":
		requireArgs(args, 2, "vget <key>")
		v, err := c.VGet(args[1])
		must(v, err)

	case "vset":
		requireArgs(args, 3, "vset <key> <vector>")
		normalized, err := vector.Validate(args[2])
		if err != nil {
			fail(err)
		}
		must("", c.VSet(args[1], normalized))

	case "vdel":
		requireArgs(args, 2, "vdel <key>")
		must("", c.VDel(args[1]))

	case "ping":
		msg := ""
		if len(args) > 1 {
			msg = args[1]
		}
		v, err := c.Ping(msg)
		must(v, err)

	default:
		usage()
		os.Exit(2)
	}
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintln(os.Stderr, "usage:", usage)
		os.Exit(2)
	}
}

func must(value string, err error) {
	if err != nil {
		fail(err)
	}
	fmt.Println(value)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: kvs-client [-addr host:port] <command> [args]

commands:
  get <key>
  set <key> <value>
  rm <key>
  scan <start> <end>
  vget <key>
  vset <key> <vector>
  vdel <key>
  ping [message]`)
}
