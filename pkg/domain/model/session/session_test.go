package session_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/model/session"
)

func TestBind(t *testing.T) {
	t.Run("binds a complete pair", func(t *testing.T) {
		sess, err := session.Bind("user-123", "bWFj")
		gt.NoError(t, err)

		id, cred := sess.Pair()
		gt.Equal(t, id.String(), "user-123")
		gt.Equal(t, cred.String(), "bWFj")
		gt.Equal(t, sess.UserID().String(), "user-123")
	})

	t.Run("rejects empty credential", func(t *testing.T) {
		sess, err := session.Bind("user-123", "")
		gt.Error(t, err)
		gt.Nil(t, sess)
		gt.True(t, goerr.HasTag(err, errs.TagInvalidState))
	})

	t.Run("rejects empty user ID", func(t *testing.T) {
		sess, err := session.Bind("", "bWFj")
		gt.Error(t, err)
		gt.Nil(t, sess)
	})
}

func TestContextLogValue(t *testing.T) {
	sess, err := session.Bind("user-123", "c2VjcmV0LW1hYw==")
	gt.NoError(t, err)

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("bound", "session", sess)
	gt.S(t, buf.String()).Contains("user-123").NotContains("c2VjcmV0LW1hYw==")
}
