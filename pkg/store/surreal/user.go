package surreal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type webLogUsers struct {
	s *Store
}

func (u *webLogUsers) Add(ctx context.Context, user models.WebLogUser) error {
	return create(ctx, u.s, "web_log_user", user)
}

func (u *webLogUsers) Delete(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (bool, error) {
	existing, err := u.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}

	pageCount, err := u.s.queryCount(ctx,
		"SELECT count() FROM page WHERE web_log_id = $web_log AND author_id = $author GROUP ALL",
		map[string]any{"web_log": webLogID.RecordID(), "author": id.RecordID()})
	if err != nil {
		return false, err
	}
	postCount, err := u.s.queryCount(ctx,
		"SELECT count() FROM post WHERE web_log_id = $web_log AND author_id = $author GROUP ALL",
		map[string]any{"web_log": webLogID.RecordID(), "author": id.RecordID()})
	if err != nil {
		return false, err
	}
	if pageCount > 0 || postCount > 0 {
		return false, &store.ConstraintError{
			Entity:     "web_log_user",
			Constraint: "authored_content",
			Detail:     fmt.Sprintf("user has %d page(s) and %d post(s)", pageCount, postCount),
		}
	}

	return true, remove(ctx, u.s, id.RecordID())
}

func (u *webLogUsers) FindByEmail(ctx context.Context, email string, webLogID models.WebLogID) (*models.WebLogUser, error) {
	return queryOne[models.WebLogUser](ctx, u.s,
		"SELECT * FROM web_log_user WHERE web_log_id = $web_log AND email = $email",
		map[string]any{"web_log": webLogID.RecordID(), "email": email})
}

func (u *webLogUsers) FindByID(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (*models.WebLogUser, error) {
	user, err := selectByID[models.WebLogUser](ctx, u.s, id.RecordID())
	if user == nil || err != nil {
		return nil, err
	}
	if user.WebLogID != webLogID {
		return nil, nil
	}
	return user, nil
}

func (u *webLogUsers) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.WebLogUser, error) {
	users, err := queryRows[models.WebLogUser](ctx, u.s,
		"SELECT * FROM web_log_user WHERE web_log_id = $web_log",
		map[string]any{"web_log": webLogID.RecordID()})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].DisplayName()) < strings.ToLower(users[j].DisplayName())
	})
	return users, nil
}

func (u *webLogUsers) FindNames(ctx context.Context, webLogID models.WebLogID, ids []models.WebLogUserID) ([]store.UserName, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rids := make([]any, len(ids))
	for i, id := range ids {
		rids[i] = id.RecordID()
	}
	users, err := queryRows[models.WebLogUser](ctx, u.s,
		"SELECT * FROM web_log_user WHERE web_log_id = $web_log AND id IN $ids",
		map[string]any{"web_log": webLogID.RecordID(), "ids": rids})
	if err != nil {
		return nil, err
	}
	names := make([]store.UserName, len(users))
	for i, user := range users {
		names[i] = store.UserName{ID: user.ID, Name: user.DisplayName()}
	}
	return names, nil
}

func (u *webLogUsers) Restore(ctx context.Context, users []models.WebLogUser) error {
	for _, user := range users {
		if err := u.Add(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

func (u *webLogUsers) SetLastSeen(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) error {
	existing, err := u.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return err
	}
	now := time.Now().UTC()
	existing.LastSeenOn = &now
	return replace(ctx, u.s, id.RecordID(), *existing)
}

func (u *webLogUsers) Update(ctx context.Context, user models.WebLogUser) error {
	existing, err := u.FindByID(ctx, user.ID, user.WebLogID)
	if err != nil || existing == nil {
		return err
	}
	return replace(ctx, u.s, user.ID.RecordID(), user)
}
