// Command meetup matches questionnaire answers between two parties without
// revealing them, and commits the results to a contract state file.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: meetup <command> [flags]

Commands:
  register    create an empty contract state
  post-root   commit the Merkle root of a list of answers
  summary     commit the digest of a list of encrypted answers
  match       intersect two lists of answers
  show        print the committed state

Every command accepts -config FILE (TOML) and -state FILE.
Run 'meetup <command> -h' for the flags of a command.`)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cli := NewCLI(os.Stdout)

	var err error
	switch os.Args[1] {
	case "register":
		err = cli.Register(os.Args[2:])
	case "post-root":
		err = cli.PostRoot(os.Args[2:])
	case "summary":
		err = cli.Summary(os.Args[2:])
	case "match":
		err = cli.Match(os.Args[2:])
	case "show":
		err = cli.Show(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
