package slack_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	slackCtrl "github.com/campusfix/issuedesk/pkg/controller/slack"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/campusfix/issuedesk/pkg/repository"
	slackSvc "github.com/campusfix/issuedesk/pkg/service/slack"
	"github.com/campusfix/issuedesk/pkg/usecase"
	"github.com/m-mizutani/gt"
	"github.com/slack-go/slack"
)

const testSigningSecret = "test-signing-secret"

type testEnv struct {
	handler *slackCtrl.Handler
	issueUC *usecase.Issue
	repo    *repository.Memory
	replies chan *slack.WebhookMessage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repository.NewMemory()
	issueUC := usecase.NewIssue(repo, usecase.NewNotification(repo))
	replies := make(chan *slack.WebhookMessage, 4)

	handler := slackCtrl.NewHandler(testSigningSecret, issueUC,
		slackCtrl.WithResponder(func(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error {
			replies <- msg
			return nil
		}),
	)

	return &testEnv{handler: handler, issueUC: issueUC, repo: repo, replies: replies}
}

func (e *testEnv) createIssue(t *testing.T) *model.Issue {
	t.Helper()

	authCtx := model.NewAuthContext("student-1", types.RoleStudent)
	ctx := model.WithAuthContext(context.Background(), authCtx)
	issue, err := e.issueUC.Create(ctx, &model.CreateIssueInput{
		Title:       "Sparking socket",
		Description: "Socket near the window sparks when used",
		Category:    types.CategoryElectricity,
		Location:    model.IssueLocation{Building: "Library"},
	})
	gt.NoError(t, err).Required()
	return issue
}

func signedRequest(t *testing.T, secret string, ts time.Time, payload any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(payload)
	gt.NoError(t, err).Required()
	body := url.Values{"payload": {string(raw)}}.Encode()

	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":" + body))

	req := httptest.NewRequest(http.MethodPost, "/slack/interaction", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func blockAction(actionID, value string) map[string]any {
	return map[string]any{
		"type":         "block_actions",
		"response_url": "https://hooks.slack.test/actions/1",
		"user":         map[string]any{"id": "U123", "name": "facilities.jo"},
		"team":         map[string]any{"id": "T1"},
		"actions": []map[string]any{
			{"action_id": actionID, "block_id": "issue_actions", "value": value, "type": "button"},
		},
	}
}

func waitReply(t *testing.T, replies chan *slack.WebhookMessage) *slack.WebhookMessage {
	t.Helper()
	select {
	case msg := <-replies:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no reply posted to response URL")
		return nil
	}
}

func TestHandleInteractionStartWork(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t)

	w := httptest.NewRecorder()
	env.handler.HandleInteraction(w, signedRequest(t, testSigningSecret, time.Now(),
		blockAction(slackSvc.ActionStartIssue, string(issue.ID))))
	gt.Equal(t, w.Code, http.StatusOK)

	stored, err := env.repo.GetIssue(context.Background(), issue.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, stored.Status, types.StatusInProgress)
	gt.Equal(t, stored.AssignedTo, "facilities.jo")

	reply := waitReply(t, env.replies)
	gt.Equal(t, reply.ResponseType, slack.ResponseTypeInChannel)
	gt.S(t, reply.Text).Contains("In Progress")

	// the reporter is told their issue is being worked on
	page, err := env.repo.ListNotifications(context.Background(), "student-1", model.NotificationQuery{})
	gt.NoError(t, err).Required()
	gt.Equal(t, page.Total, 1)
	gt.Equal(t, page.Notifications[0].Type, types.NotificationInProgress)
}

func TestHandleInteractionReject(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t)

	w := httptest.NewRecorder()
	env.handler.HandleInteraction(w, signedRequest(t, testSigningSecret, time.Now(),
		blockAction(slackSvc.ActionRejectIssue, string(issue.ID))))
	gt.Equal(t, w.Code, http.StatusOK)

	stored, err := env.repo.GetIssue(context.Background(), issue.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, stored.Status, types.StatusRejected)
	gt.Equal(t, stored.AssignedTo, "")
	waitReply(t, env.replies)
}

func TestHandleInteractionUnknownIssue(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.HandleInteraction(w, signedRequest(t, testSigningSecret, time.Now(),
		blockAction(slackSvc.ActionStartIssue, "missing")))
	gt.Equal(t, w.Code, http.StatusOK)

	reply := waitReply(t, env.replies)
	gt.Equal(t, reply.ResponseType, slack.ResponseTypeEphemeral)
	gt.S(t, reply.Text).Contains("Could not update")
}

func TestHandleInteractionIgnoresLinkButton(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t)

	w := httptest.NewRecorder()
	env.handler.HandleInteraction(w, signedRequest(t, testSigningSecret, time.Now(),
		blockAction(slackSvc.ActionOpenIssue, string(issue.ID))))
	gt.Equal(t, w.Code, http.StatusOK)

	stored, err := env.repo.GetIssue(context.Background(), issue.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, stored.Status, types.StatusPending)
	gt.Equal(t, len(env.replies), 0)
}

func TestHandleInteractionSignature(t *testing.T) {
	env := newTestEnv(t)
	issue := env.createIssue(t)
	payload := blockAction(slackSvc.ActionRejectIssue, string(issue.ID))

	t.Run("wrong secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.HandleInteraction(w, signedRequest(t, "other-secret", time.Now(), payload))
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.HandleInteraction(w, signedRequest(t, testSigningSecret, time.Now().Add(-10*time.Minute), payload))
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})

	t.Run("missing headers", func(t *testing.T) {
		req := signedRequest(t, testSigningSecret, time.Now(), payload)
		req.Header.Del("X-Slack-Signature")
		w := httptest.NewRecorder()
		env.handler.HandleInteraction(w, req)
		gt.Equal(t, w.Code, http.StatusUnauthorized)
	})

	stored, err := env.repo.GetIssue(context.Background(), issue.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, stored.Status, types.StatusPending)
}
