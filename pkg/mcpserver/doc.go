// Package mcpserver exposes the OSINT pipeline as a Model Context
// Protocol (MCP) server, letting AI assistants (Claude, VS Code
// Copilot, Cursor, etc.) drive reconnaissance scans and report
// generation through natural conversation.
//
// # Tool Design Principles
//
// Every tool follows the same conventions:
//
//   - Detailed markdown descriptions with usage guidance and examples
//   - Complete JSON schemas with enums and defaults
//   - Proper annotations (readOnlyHint, idempotentHint, openWorldHint)
//   - Actionable IsError results that suggest the correct next step
//
// # Usage
//
//	srv, err := mcpserver.New(&mcpserver.Config{Client: client, Generator: gen})
//	if err != nil {
//		return err
//	}
//	err = srv.RunStdio(ctx)
package mcpserver
