package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	slackSvc "github.com/campusfix/issuedesk/pkg/service/slack"
	"github.com/campusfix/issuedesk/pkg/utils/async"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const maxPayloadSize = 1 << 20

// Responder sends a follow-up message to an interaction response URL
type Responder func(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error

// Handler serves Slack interaction callbacks for the triage buttons on issue
// alerts. Anyone able to click a button in the alert channel acts as staff.
type Handler struct {
	signingSecret string
	issueUC       interfaces.Issue
	respond       Responder
}

// Option configures a Handler
type Option func(*Handler)

// WithResponder replaces the function that posts to response URLs
func WithResponder(r Responder) Option {
	return func(h *Handler) {
		h.respond = r
	}
}

// NewHandler creates a new Slack interaction handler
func NewHandler(signingSecret string, issueUC interfaces.Issue, opts ...Option) *Handler {
	h := &Handler{
		signingSecret: signingSecret,
		issueUC:       issueUC,
		respond:       slack.PostWebhookContext,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleInteraction handles a single Slack interaction
func (h *Handler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	if err := h.verify(r.Header, body); err != nil {
		ctxlog.From(ctx).Warn("Invalid Slack signature for interaction", "error", err)
		writeError(w, err, http.StatusUnauthorized)
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		writeError(w, goerr.Wrap(err, "failed to parse form"), http.StatusBadRequest)
		return
	}
	payload := form.Get("payload")
	if payload == "" {
		writeError(w, goerr.New("payload not found"), http.StatusBadRequest)
		return
	}

	var interaction slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &interaction); err != nil {
		writeError(w, goerr.Wrap(err, "failed to unmarshal interaction payload"), http.StatusBadRequest)
		return
	}

	ctxlog.From(ctx).Info("Handling Slack interaction",
		"type", string(interaction.Type),
		"user", interaction.User.ID,
		"team", interaction.Team.ID,
	)

	if interaction.Type == slack.InteractionTypeBlockActions {
		h.handleBlockActions(ctx, &interaction)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) verify(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return goerr.Wrap(err, "invalid signature headers")
	}
	if _, err := sv.Write(body); err != nil {
		return goerr.Wrap(err, "failed to hash body")
	}
	if err := sv.Ensure(); err != nil {
		return goerr.Wrap(err, "signature mismatch")
	}
	return nil
}

func (h *Handler) handleBlockActions(ctx context.Context, interaction *slack.InteractionCallback) {
	operator := slackOperator(interaction.User)
	ctx = model.WithAuthContext(ctx, operator)

	for _, action := range interaction.ActionCallback.BlockActions {
		var update model.StatusUpdate
		switch action.ActionID {
		case slackSvc.ActionStartIssue:
			update = model.StatusUpdate{Status: types.StatusInProgress, AssignedTo: operator.Name}
		case slackSvc.ActionRejectIssue:
			update = model.StatusUpdate{Status: types.StatusRejected}
		default:
			// link buttons need no handling
			continue
		}

		issueID := types.IssueID(action.Value)
		reply := &slack.WebhookMessage{ResponseType: slack.ResponseTypeInChannel}

		issue, err := h.issueUC.UpdateStatus(ctx, issueID, update)
		if err != nil {
			ctxlog.From(ctx).Error("Failed to update issue from Slack",
				"error", err,
				"issue_id", issueID,
				"action", action.ActionID,
			)
			reply.ResponseType = slack.ResponseTypeEphemeral
			reply.Text = fmt.Sprintf("Could not update issue `%s`", issueID)
		} else {
			reply.Text = fmt.Sprintf("<@%s> set \"%s\" to *%s*", interaction.User.ID, issue.Title, issue.Status)
		}

		if interaction.ResponseURL == "" {
			continue
		}
		responseURL := interaction.ResponseURL
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := h.respond(ctx, responseURL, reply); err != nil {
				return goerr.Wrap(err, "failed to respond to interaction", goerr.V("issue_id", issueID))
			}
			return nil
		})
	}
}

// slackOperator maps the Slack user who clicked a button to a staff identity
func slackOperator(user slack.User) *model.AuthContext {
	authCtx := model.NewAuthContext(types.UserID("slack:"+user.ID), types.RoleStaff)
	authCtx.Name = user.Name
	if authCtx.Name == "" {
		authCtx.Name = user.ID
	}
	return authCtx
}

func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
