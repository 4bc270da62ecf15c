// Command cek-cli sends one program read from stdin to a running
// cek-server and prints the response as JSON.
//
//	cek-cli [eval|trace] < program
//	cek-cli traces [n]
//	cek-cli trace-get ID
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	cek "github.com/hypersimple/Toy-Language-Interpreter/core"
)

func main() {
	cfg, err := cek.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	op := "eval"
	if len(os.Args) > 1 {
		op = os.Args[1]
	}
	msg := map[string]any{"id": cek.NextID(), "op": op}

	switch op {
	case "traces", "trace-get":
		key := "n"
		if op == "trace-get" {
			key = "trace"
		}
		if len(os.Args) > 2 {
			v, err := strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %q is not a number\n", op, os.Args[2])
				os.Exit(2)
			}
			msg[key] = v
		}
	}

	if op == "eval" || op == "trace" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
		msg["program"] = string(data)
	}

	conn, err := net.Dial("unix", cfg.Socket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := cek.WriteMsg(conn, msg); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}

	resp, err := cek.ReadMsg(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "receive: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if ok, _ := resp["ok"].(bool); !ok {
		os.Exit(1)
	}
}
