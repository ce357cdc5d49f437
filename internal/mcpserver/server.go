// Package mcpserver exposes the roster, the dialogue parser and consultation
// sessions as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwulff/chartnote/internal/api"
	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/db"
	"github.com/jwulff/chartnote/internal/dialogue"
	"github.com/jwulff/chartnote/internal/logger"
	"github.com/jwulff/chartnote/internal/version"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultWait bounds how long a tool call blocks for a session to settle.
const defaultWait = 30 * time.Second

// Tools implements the MCP tool handlers.
type Tools struct {
	registry *consult.Registry
	roster   api.Roster
	logger   logger.Logger
	wait     time.Duration
}

// NewTools returns handlers over the given registry and roster.
func NewTools(registry *consult.Registry, roster api.Roster, log logger.Logger) *Tools {
	return &Tools{registry: registry, roster: roster, logger: log, wait: defaultWait}
}

// New builds the MCP server with every tool registered.
func New(t *Tools) *server.MCPServer {
	s := server.NewMCPServer("chartnote", version.Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_patients",
		mcp.WithDescription("List the patient roster, optionally filtered by name or condition"),
		mcp.WithString("query", mcp.Description("Case-insensitive search on name or recent condition")),
	), t.ListPatients)

	s.AddTool(mcp.NewTool("parse_dialogue",
		mcp.WithDescription("Split a consultation transcript into clinician and patient turns"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Transcript text with speaker labels")),
	), t.ParseDialogue)

	s.AddTool(mcp.NewTool("open_consultation",
		mcp.WithDescription("Open a consultation for a patient: transcribe the recording and summarize it as a SOAP note"),
		mcp.WithString("patient_id", mcp.Required(), mcp.Description("Roster id, e.g. P001")),
		mcp.WithBoolean("wait", mcp.Description("Block until the summary is ready or failed (default true)")),
	), t.OpenConsultation)

	s.AddTool(mcp.NewTool("consultation_status",
		mcp.WithDescription("Show a consultation's state, transcript, dialogue and summary"),
		mcp.WithString("patient_id", mcp.Required()),
		mcp.WithBoolean("wait", mcp.Description("Block until nothing is pending (default false)")),
	), t.ConsultationStatus)

	s.AddTool(mcp.NewTool("edit_transcript",
		mcp.WithDescription("Replace a consultation transcript and regenerate its summary"),
		mcp.WithString("patient_id", mcp.Required()),
		mcp.WithString("text", mcp.Required(), mcp.Description("Corrected transcript text")),
		mcp.WithBoolean("wait", mcp.Description("Block until the new summary is ready or failed (default true)")),
	), t.EditTranscript)

	s.AddTool(mcp.NewTool("retry_summary",
		mcp.WithDescription("Retry a failed transcription or summary"),
		mcp.WithString("patient_id", mcp.Required()),
		mcp.WithBoolean("wait", mcp.Description("Block until the retry settles (default true)")),
	), t.RetrySummary)

	s.AddTool(mcp.NewTool("close_consultation",
		mcp.WithDescription("Close a consultation and discard its state"),
		mcp.WithString("patient_id", mcp.Required()),
	), t.CloseConsultation)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(t *Tools) error {
	return server.ServeStdio(New(t))
}

func (t *Tools) ListPatients(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patients, err := t.roster.Patients()
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	stats := db.Stats(patients)
	filtered := db.Filter(patients, req.GetString("query", ""))
	resp := api.RosterResponse{
		Patients:      make([]api.PatientView, 0, len(filtered)),
		TotalPatients: stats.Patients,
		Consultations: stats.Consultations,
	}
	for _, p := range filtered {
		resp.Patients = append(resp.Patients, api.NewPatientView(p))
	}
	return jsonResult(resp)
}

func (t *Tools) ParseDialogue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	turns := dialogue.Parse(text)
	if turns == nil {
		turns = []dialogue.Turn{}
	}
	return jsonResult(turns)
}

func (t *Tools) OpenConsultation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("patient_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, created, err := t.registry.Open(id)
	if err != nil {
		return toolError(err)
	}
	if created {
		t.logger.Info(ctx, "opened consultation for patient %s", id)
	}
	return t.settle(ctx, sess, req.GetBool("wait", true))
}

func (t *Tools) ConsultationStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, res := t.session(req)
	if res != nil {
		return res, nil
	}
	return t.settle(ctx, sess, req.GetBool("wait", false))
}

// EditTranscript opens the edit buffer if needed and saves text in one call.
func (t *Tools) EditTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, res := t.session(req)
	if res != nil {
		return res, nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opened := false
	if sess.CurrentState() != consult.StateEditing {
		if err := sess.BeginEdit(); err != nil {
			return toolError(err)
		}
		opened = true
	}
	if err := sess.SaveEdit(text); err != nil {
		if opened && consult.IsValidation(err) {
			// Leave the session as it was before this call.
			_ = sess.CancelEdit()
		}
		return toolError(err)
	}
	return t.settle(ctx, sess, req.GetBool("wait", true))
}

func (t *Tools) RetrySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, res := t.session(req)
	if res != nil {
		return res, nil
	}
	if err := sess.Retry(); err != nil {
		return toolError(err)
	}
	return t.settle(ctx, sess, req.GetBool("wait", true))
}

func (t *Tools) CloseConsultation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("patient_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.registry.Close(id); err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("consultation for %s closed", id)), nil
}

func (t *Tools) session(req mcp.CallToolRequest) (*consult.Session, *mcp.CallToolResult) {
	id, err := req.RequireString("patient_id")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	sess, err := t.registry.Get(id)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return sess, nil
}

// settle renders the session, first waiting for it to settle when asked.
func (t *Tools) settle(ctx context.Context, sess *consult.Session, wait bool) (*mcp.CallToolResult, error) {
	if !wait {
		return jsonResult(api.NewSessionView(sess.Snapshot()))
	}

	ctx, cancel := context.WithTimeout(ctx, t.wait)
	defer cancel()

	v, err := consult.WaitSettled(ctx, sess)
	if errors.Is(err, context.DeadlineExceeded) {
		t.logger.Warn(ctx, "consultation for %s still pending after %s", v.PatientID, t.wait)
	} else if err != nil && !errors.Is(err, consult.ErrSessionClosed) {
		return nil, err
	}
	return jsonResult(api.NewSessionView(v))
}

// toolError reports domain errors to the model as tool errors. Anything else
// is a protocol-level failure.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch {
	case consult.IsValidation(err),
		errors.Is(err, consult.ErrInvalidTransition),
		errors.Is(err, consult.ErrUnknownPatient),
		errors.Is(err, consult.ErrNoSession),
		errors.Is(err, consult.ErrSessionClosed):
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
