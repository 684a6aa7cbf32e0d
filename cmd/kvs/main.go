// Command kvs operates directly on a log engine rooted at the current
// working directory, with no network hop.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/arnavsurve/kvs/internal/engine"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	eng, err := engine.Open(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer eng.Close()

	switch os.Args[1] {
	case "set":
		err = runSet(eng, os.Args[2:])
	case "get":
		err = runGet(eng, os.Args[2:])
	case "rm":
		err = runRemove(eng, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs <set|get|rm> ...")
}

func runSet(eng *engine.LogEngine, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return errors.New("usage: kvs set KEY VALUE")
	}
	return eng.Set(fs.Arg(0), fs.Arg(1))
}

func runGet(eng *engine.LogEngine, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: kvs get KEY")
	}
	value, err := eng.Get(fs.Arg(0))
	if err != nil {
		return err
	}
	if value == nil {
		fmt.Println("Key not found")
		return nil
	}
	fmt.Println(*value)
	return nil
}

func runRemove(eng *engine.LogEngine, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: kvs rm KEY")
	}
	if err := eng.Remove(fs.Arg(0)); err != nil {
		if errors.Is(err, engine.ErrKeyNotFound) {
			fmt.Println("Key not found")
		}
		return err
	}
	return nil
}
