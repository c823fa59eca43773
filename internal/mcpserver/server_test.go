package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notestore/internal/models"
	"github.com/starford/notestore/internal/noteservice"
	"github.com/starford/notestore/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, store := testutil.TestStore(t)
	srv := New(noteservice.NewService(store), "test")

	var info struct {
		ServerInfo struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(rpc(t, srv, "initialize", map[string]any{
		"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
		"clientInfo":      map[string]any{"name": "notestore-test", "version": "0"},
		"capabilities":    map[string]any{},
	}), &info))
	require.Equal(t, "notestore", info.ServerInfo.Name)
	require.Equal(t, "test", info.ServerInfo.Version)
	return srv
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// dispatch sends one JSON-RPC request through the server's message handler.
func dispatch(t *testing.T, srv *Server, method string, params any) (json.RawMessage, *rpcError) {
	t.Helper()
	req, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := srv.MCPServer().HandleMessage(context.Background(), req)
	require.NotNil(t, resp, method)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	return envelope.Result, envelope.Error
}

func rpc(t *testing.T, srv *Server, method string, params any) json.RawMessage {
	t.Helper()
	result, rpcErr := dispatch(t, srv, method, params)
	require.Nil(t, rpcErr, "%s: %+v", method, rpcErr)
	return result
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	raw := rpc(t, srv, "tools/call", map[string]any{"name": name, "arguments": args})
	result, err := mcp.ParseCallToolResult(&raw)
	require.NoError(t, err, "tool %s", name)
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestNoteLifecycle(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{"name": "todo", "text": "buy milk"})
	require.False(t, r.IsError, resultText(r))
	assert.Equal(t, "created: todo", resultText(r))

	r = callTool(t, srv, "read_note", map[string]any{"name": "todo"})
	assert.Equal(t, "buy milk", resultText(r))

	r = callTool(t, srv, "update_note", map[string]any{"name": "todo", "text": "buy milk and eggs"})
	require.False(t, r.IsError, resultText(r))

	r = callTool(t, srv, "read_note", map[string]any{"name": "todo"})
	assert.Equal(t, "buy milk and eggs", resultText(r))

	r = callTool(t, srv, "delete_note", map[string]any{"name": "todo"})
	require.False(t, r.IsError, resultText(r))

	r = callTool(t, srv, "read_note", map[string]any{"name": "todo"})
	assert.True(t, r.IsError)
	assert.Equal(t, "not found: todo", resultText(r))
}

func TestCreateDuplicate(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_note", map[string]any{"name": "a", "text": "1"})

	r := callTool(t, srv, "create_note", map[string]any{"name": "a", "text": "2"})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "already exists")
}

func TestInvalidInput(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{"name": "../x", "text": "1"})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "invalid note name")

	r = callTool(t, srv, "create_note", map[string]any{"name": "x"})
	assert.True(t, r.IsError, "missing text argument")

	r = callTool(t, srv, "update_note", map[string]any{"name": "missing", "text": "1"})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "not found")
}

func TestListNotes(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_notes", map[string]any{})
	assert.JSONEq(t, "[]", resultText(r))

	callTool(t, srv, "create_note", map[string]any{"name": "a", "text": "alpha"})
	callTool(t, srv, "create_note", map[string]any{"name": "b", "text": "beta"})

	r = callTool(t, srv, "list_notes", map[string]any{})
	var notes []models.Note
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &notes))
	assert.ElementsMatch(t, []models.Note{{Name: "a", Text: "alpha"}, {Name: "b", Text: "beta"}}, notes)
}

func TestNoteRules(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note_rules", map[string]any{})
	assert.Contains(t, resultText(r), "# Note rules")

	var read struct {
		Contents []struct {
			URI      string `json:"uri"`
			MIMEType string `json:"mimeType"`
			Text     string `json:"text"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(rpc(t, srv, "resources/read", map[string]any{"uri": NoteRulesURI}), &read))
	require.Len(t, read.Contents, 1)
	assert.Equal(t, NoteRulesURI, read.Contents[0].URI)
	assert.Equal(t, "text/markdown", read.Contents[0].MIMEType)
	assert.Equal(t, NoteRules, read.Contents[0].Text)
}

func TestToolRegistrations(t *testing.T) {
	srv := testServer(t)

	var list struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rpc(t, srv, "tools/list", map[string]any{}), &list))

	required := make(map[string][]string, len(list.Tools))
	for _, tool := range list.Tools {
		required[tool.Name] = tool.InputSchema.Required
	}
	assert.Len(t, required, 6)
	assert.Empty(t, required["list_notes"])
	assert.Empty(t, required["get_note_rules"])
	assert.ElementsMatch(t, []string{"name"}, required["read_note"])
	assert.ElementsMatch(t, []string{"name"}, required["delete_note"])
	assert.ElementsMatch(t, []string{"name", "text"}, required["create_note"])
	assert.ElementsMatch(t, []string{"name", "text"}, required["update_note"])
}

func TestUnknownTool(t *testing.T) {
	srv := testServer(t)
	_, rpcErr := dispatch(t, srv, "tools/call", map[string]any{"name": "rename_note", "arguments": map[string]any{}})
	require.NotNil(t, rpcErr)
	assert.Contains(t, rpcErr.Message, "rename_note")
}
