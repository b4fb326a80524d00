package chat

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
)

func TestConversationLogLatest(t *testing.T) {
	db := testutil.DB(t)
	repo := NewConversationLogRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	base := time.Now().UTC()
	for i, body := range []string{`[{"role":"user","content":"a"}]`, `[{"role":"user","content":"b"}]`} {
		row := &types.ConversationLog{
			SessionID: "s1",
			UserID:    "u1",
			Channel:   "web",
			Messages:  datatypes.JSON([]byte(body)),
			Metadata:  datatypes.JSON([]byte(`{}`)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	latest, err := repo.LatestBySession(dbc, "s1")
	if err != nil || latest == nil {
		t.Fatalf("LatestBySession: got=%v err=%v", latest, err)
	}
	if string(latest.Messages) != `[{"role":"user","content":"b"}]` {
		t.Fatalf("LatestBySession: got=%s", latest.Messages)
	}
	n, err := repo.CountBySession(dbc, "s1")
	if err != nil || n != 2 {
		t.Fatalf("CountBySession: want 2 got=%d err=%v", n, err)
	}
	none, err := repo.LatestBySession(dbc, "other")
	if err != nil || none != nil {
		t.Fatalf("LatestBySession(other): want nil got=%v err=%v", none, err)
	}
}

func TestChannelSessionUpsert(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChannelSessionRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	if err := repo.Upsert(dbc, &types.ChannelSession{SessionID: "s1", UserID: "u1", Channel: "web", CurrentIntent: "greeting", IsActive: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, &types.ChannelSession{SessionID: "s1", UserID: "u1", Channel: "web", CurrentIntent: "checkout", LastWorker: "cart", IsActive: true}); err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}
	got, err := repo.GetBySessionID(dbc, "s1")
	if err != nil || got == nil {
		t.Fatalf("GetBySessionID: got=%v err=%v", got, err)
	}
	if got.CurrentIntent != "checkout" || got.LastWorker != "cart" {
		t.Fatalf("GetBySessionID: got=%+v", got)
	}
}
