// Command cek-mcp exposes a running cek-server as MCP tools over stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	cek "github.com/hypersimple/Toy-Language-Interpreter/core"
)

// bridge forwards tool calls to the evaluation server over one connection.
type bridge struct {
	mu   sync.Mutex
	conn net.Conn
}

// send sends a request to the server and returns the response.
func (b *bridge) send(req map[string]any) (map[string]any, error) {
	req["id"] = cek.NextID()
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := cek.WriteMsg(b.conn, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	resp, err := cek.ReadMsg(b.conn)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return resp, nil
}

// formatResult turns a server response into an MCP tool result. A
// declarations-only program is reported as an error that still carries its
// output.
func formatResult(resp map[string]any) (*mcp.CallToolResult, error) {
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			if value, has := resp["value"]; has {
				out, err := json.MarshalIndent(value, "", "  ")
				if err != nil {
					return nil, fmt.Errorf("marshal value: %w", err)
				}
				return mcp.NewToolResultError(string(out)), nil
			}
			errMsg = "unknown error"
		}
		if kind, _ := resp["kind"].(string); kind != "" {
			errMsg = kind + ": " + errMsg
		}
		return mcp.NewToolResultError(errMsg), nil
	}
	out, err := json.MarshalIndent(resp["value"], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (b *bridge) call(req map[string]any) (*mcp.CallToolResult, error) {
	resp, err := b.send(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func (b *bridge) handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	program, err := request.RequireString("program")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return b.call(map[string]any{"op": "eval", "program": program})
}

func (b *bridge) handleTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	program, err := request.RequireString("program")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := map[string]any{"op": "trace", "program": program}
	if limit := request.GetInt("limit", 0); limit > 0 {
		req["limit"] = limit
	}
	return b.call(req)
}

func (b *bridge) handleTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := map[string]any{"op": "traces"}
	if n := request.GetInt("n", 0); n > 0 {
		req["n"] = n
	}
	return b.call(req)
}

func (b *bridge) handleTraceGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return b.call(map[string]any{"op": "trace-get", "trace": id})
}

func (b *bridge) newServer() *server.MCPServer {
	s := server.NewMCPServer(
		"cek",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("cek_eval",
			mcp.WithDescription("Evaluate a toy-language program and return the final declarations."),
			mcp.WithString("program",
				mcp.Required(),
				mcp.Description("Program as XML or as an s-expression, e.g. (block (declarations x 5) (assign x 7))"),
			),
		),
		b.handleEval,
	)

	s.AddTool(
		mcp.NewTool("cek_trace",
			mcp.WithDescription("Evaluate a program and return the machine registers after every step."),
			mcp.WithString("program",
				mcp.Required(),
				mcp.Description("Program as XML or as an s-expression"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of snapshots to return"),
			),
		),
		b.handleTrace,
	)

	s.AddTool(
		mcp.NewTool("cek_traces",
			mcp.WithDescription("List recent program runs recorded by the server."),
			mcp.WithNumber("n",
				mcp.Description("How many runs to list, newest last"),
			),
		),
		b.handleTraces,
	)

	s.AddTool(
		mcp.NewTool("cek_trace_get",
			mcp.WithDescription("Fetch one recorded run by id, including its program and output."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Run id as listed by cek_traces"),
			),
		),
		b.handleTraceGet,
	)

	return s
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()

	cfg, err := cek.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	conn, err := net.Dial("unix", cfg.Socket)
	if err != nil {
		log.Fatal().Err(err).Str("socket", cfg.Socket).Msg("connect to cek server")
	}
	defer conn.Close()
	log.Info().Str("socket", cfg.Socket).Msg("connected to cek server")

	b := &bridge{conn: conn}
	if err := server.ServeStdio(b.newServer()); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
