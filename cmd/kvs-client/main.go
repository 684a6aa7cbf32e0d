// Command kvs-client issues a single set, get, or remove request against a
// kvs-server and prints the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/arnavsurve/kvs/internal/client"
)

const defaultAddr = "127.0.0.1:4000"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "set":
		err = runSet(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "rm":
		err = runRemove(os.Args[2:])
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
	fmt.Fprintln(os.Stderr, "usage: kvs-client <set|get|rm> [--addr HOST:PORT] ...")
}

func runSet(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	addr := fs.String("addr", defaultAddr, "server address")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return errors.New("usage: kvs-client set [--addr HOST:PORT] KEY VALUE")
	}
	return client.New(*addr).Set(fs.Arg(0), fs.Arg(1))
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	addr := fs.String("addr", defaultAddr, "server address")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: kvs-client get [--addr HOST:PORT] KEY")
	}
	value, err := client.New(*addr).Get(fs.Arg(0))
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

func runRemove(args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	addr := fs.String("addr", defaultAddr, "server address")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: kvs-client rm [--addr HOST:PORT] KEY")
	}
	if err := client.New(*addr).Remove(fs.Arg(0)); err != nil {
		if strings.Contains(err.Error(), "key not found") {
			fmt.Println("Key not found")
		}
		return err
	}
	return nil
}
