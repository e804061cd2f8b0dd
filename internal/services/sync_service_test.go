package services

import (
	"errors"
	"testing"

	"github.com/dreamolight/Phone2/internal/models"
)

type mockLogRepo struct {
	upsertFunc            func(*models.Log) error
	listByNumberFunc      func(string, string, int, int) ([]*models.Log, error)
	listFunc              func(string, int, int) ([]*models.Log, error)
	listConversationsFunc func(string, []string) ([]*models.Conversation, error)
	markConversationFunc  func(string, string) error
	markCategoryFunc      func(string, []string) error
	unreadCountsFunc      func(string) (*models.UnreadCounts, error)
	syncStatusFunc        func(string) (*models.SyncStatus, error)
}

func (m *mockLogRepo) Upsert(log *models.Log) error {
	return m.upsertFunc(log)
}

func (m *mockLogRepo) ListByNumber(userID, remoteNumber string, limit, offset int) ([]*models.Log, error) {
	return m.listByNumberFunc(userID, remoteNumber, limit, offset)
}

func (m *mockLogRepo) List(userID string, limit, offset int) ([]*models.Log, error) {
	return m.listFunc(userID, limit, offset)
}

func (m *mockLogRepo) ListConversations(userID string, types []string) ([]*models.Conversation, error) {
	return m.listConversationsFunc(userID, types)
}

func (m *mockLogRepo) MarkConversationRead(userID, remoteNumber string) error {
	return m.markConversationFunc(userID, remoteNumber)
}

func (m *mockLogRepo) MarkCategoryRead(userID string, types []string) error {
	return m.markCategoryFunc(userID, types)
}

func (m *mockLogRepo) UnreadCounts(userID string) (*models.UnreadCounts, error) {
	return m.unreadCountsFunc(userID)
}

func (m *mockLogRepo) SyncStatus(userID string) (*models.SyncStatus, error) {
	return m.syncStatusFunc(userID)
}

func TestSanitizeLog(t *testing.T) {
	name := "Bob\x00\x01"
	content := "line1\nline2\tok\x0b"

	log := &models.Log{
		Type:         "sms_inbox",
		RemoteNumber: "+1555\x001234",
		RemoteName:   &name,
		Content:      &content,
		Timestamp:    1000,
	}

	SanitizeLog(log)

	if log.RemoteNumber != "+15551234" {
		t.Errorf("RemoteNumber = %q, want %q", log.RemoteNumber, "+15551234")
	}
	if *log.RemoteName != "Bob" {
		t.Errorf("RemoteName = %q, want %q", *log.RemoteName, "Bob")
	}
	// Newline and tab survive, 0x0B does not
	if *log.Content != "line1\nline2\tok" {
		t.Errorf("Content = %q, want %q", *log.Content, "line1\nline2\tok")
	}
	if log.Timestamp != 1000 {
		t.Errorf("Timestamp changed: %d", log.Timestamp)
	}

	// nil fields pass through
	SanitizeLog(nil)
	SanitizeLog(&models.Log{})
}

func TestUploadLogs(t *testing.T) {
	valid := func(number string, ts int64) *models.Log {
		return &models.Log{Type: models.LogTypeSmsInbox, RemoteNumber: number, Timestamp: ts}
	}

	tests := []struct {
		name        string
		userID      string
		logs        []*models.Log
		wantApplied int
		wantErr     bool
	}{
		{
			name:        "valid batch",
			userID:      "user1",
			logs:        []*models.Log{valid("+15551111", 1000), valid("+15552222", 2000)},
			wantApplied: 2,
		},
		{
			name:        "empty batch",
			userID:      "user1",
			logs:        nil,
			wantApplied: 0,
		},
		{
			name:    "missing user ID",
			userID:  "",
			logs:    []*models.Log{valid("+15551111", 1000)},
			wantErr: true,
		},
		{
			name:   "unknown type aborts",
			userID: "user1",
			logs: []*models.Log{
				{Type: "carrier_pigeon", RemoteNumber: "+15551111", Timestamp: 1000},
			},
			wantErr: true,
		},
		{
			name:   "missing timestamp aborts",
			userID: "user1",
			logs: []*models.Log{
				{Type: models.LogTypeSmsInbox, RemoteNumber: "+15551111"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockLogRepo{
				upsertFunc: func(log *models.Log) error {
					if log.UserID != tt.userID {
						t.Errorf("Upsert received user %q, want %q", log.UserID, tt.userID)
					}
					return nil
				},
			}
			service := NewSyncService(repo)

			applied, err := service.UploadLogs(tt.userID, tt.logs)
			if (err != nil) != tt.wantErr {
				t.Errorf("UploadLogs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && applied != tt.wantApplied {
				t.Errorf("UploadLogs() applied = %d, want %d", applied, tt.wantApplied)
			}
		})
	}
}

func TestUploadLogsPartialFailure(t *testing.T) {
	storeErr := errors.New("disk full")
	calls := 0
	repo := &mockLogRepo{
		upsertFunc: func(log *models.Log) error {
			calls++
			if calls == 3 {
				return storeErr
			}
			return nil
		},
	}
	service := NewSyncService(repo)

	logs := make([]*models.Log, 5)
	for i := range logs {
		logs[i] = &models.Log{
			Type:         models.LogTypeSmsInbox,
			RemoteNumber: "+15551111",
			Timestamp:    int64(1000 + i),
		}
	}

	applied, err := service.UploadLogs("user1", logs)
	if !errors.Is(err, storeErr) {
		t.Fatalf("UploadLogs() error = %v, want %v", err, storeErr)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2 (records before the failure stand)", applied)
	}
	if calls != 3 {
		t.Errorf("upsert calls = %d, want 3 (loop stops at first failure)", calls)
	}
}

func TestListConversations(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		wantTypes []string
		wantErr   error
	}{
		{name: "no category", category: "", wantTypes: nil},
		{name: "all", category: models.CategoryAll, wantTypes: nil},
		{name: "messages", category: models.CategoryMessages, wantTypes: models.SmsTypes},
		{name: "calls", category: models.CategoryCalls, wantTypes: models.CallTypes},
		{name: "unknown", category: "spam", wantErr: ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTypes []string
			repo := &mockLogRepo{
				listConversationsFunc: func(userID string, types []string) ([]*models.Conversation, error) {
					gotTypes = types
					return []*models.Conversation{}, nil
				},
			}
			service := NewSyncService(repo)

			_, err := service.ListConversations("user1", tt.category)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ListConversations() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(gotTypes) != len(tt.wantTypes) {
				t.Errorf("types = %v, want %v", gotTypes, tt.wantTypes)
			}
		})
	}
}

func TestListMessagesDefaults(t *testing.T) {
	repo := &mockLogRepo{
		listByNumberFunc: func(userID, remoteNumber string, limit, offset int) ([]*models.Log, error) {
			if limit != 50 {
				t.Errorf("limit = %d, want default 50", limit)
			}
			if offset != 0 {
				t.Errorf("offset = %d, want 0", offset)
			}
			return nil, nil
		},
	}
	service := NewSyncService(repo)

	if _, err := service.ListMessages("user1", "+15551111", -1, -5); err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}

	if _, err := service.ListMessages("user1", "", 10, 0); err == nil {
		t.Error("expected error for missing remote number")
	}
	if _, err := service.ListMessages("", "+15551111", 10, 0); err == nil {
		t.Error("expected error for missing user ID")
	}
}

func TestMarkCategoryRead(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		wantTypes []string
		wantErr   error
	}{
		{name: "messages flips inbox only", category: models.CategoryMessages, wantTypes: []string{models.LogTypeSmsInbox}},
		{name: "calls", category: models.CategoryCalls, wantTypes: []string{models.LogTypeCallMissed, models.LogTypeCallIncoming}},
		{name: "all", category: models.CategoryAll, wantTypes: nil},
		{name: "empty category rejected", category: "", wantErr: ErrInvalidCategory},
		{name: "unknown category rejected", category: "spam", wantErr: ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTypes []string
			repo := &mockLogRepo{
				markCategoryFunc: func(userID string, types []string) error {
					gotTypes = types
					return nil
				},
			}
			service := NewSyncService(repo)

			err := service.MarkCategoryRead("user1", tt.category)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MarkCategoryRead() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(gotTypes) != len(tt.wantTypes) {
				t.Fatalf("types = %v, want %v", gotTypes, tt.wantTypes)
			}
			for i := range gotTypes {
				if gotTypes[i] != tt.wantTypes[i] {
					t.Errorf("types = %v, want %v", gotTypes, tt.wantTypes)
					break
				}
			}
		})
	}
}

func TestMarkConversationRead(t *testing.T) {
	called := false
	repo := &mockLogRepo{
		markConversationFunc: func(userID, remoteNumber string) error {
			called = true
			return nil
		},
	}
	service := NewSyncService(repo)

	if err := service.MarkConversationRead("user1", "+15551111"); err != nil {
		t.Fatalf("MarkConversationRead() error = %v", err)
	}
	if !called {
		t.Error("repository was not called")
	}

	if err := service.MarkConversationRead("user1", ""); err == nil {
		t.Error("expected error for missing remote number")
	}
}

func TestUnreadCountsAndSyncStatus(t *testing.T) {
	repo := &mockLogRepo{
		unreadCountsFunc: func(userID string) (*models.UnreadCounts, error) {
			return &models.UnreadCounts{Messages: 2, Calls: 1}, nil
		},
		syncStatusFunc: func(userID string) (*models.SyncStatus, error) {
			return &models.SyncStatus{LastSmsTimestamp: 4000, LastCallTimestamp: 2500}, nil
		},
	}
	service := NewSyncService(repo)

	counts, err := service.UnreadCounts("user1")
	if err != nil || counts.Messages != 2 || counts.Calls != 1 {
		t.Errorf("UnreadCounts() = %+v, %v", counts, err)
	}

	status, err := service.SyncStatus("user1")
	if err != nil || status.LastSmsTimestamp != 4000 || status.LastCallTimestamp != 2500 {
		t.Errorf("SyncStatus() = %+v, %v", status, err)
	}

	if _, err := service.UnreadCounts(""); err == nil {
		t.Error("expected error for missing user ID")
	}
	if _, err := service.SyncStatus(""); err == nil {
		t.Error("expected error for missing user ID")
	}
}
