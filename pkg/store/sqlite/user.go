package sqlite

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
	user = userUTC(user)
	return u.s.saveDoc(ctx, "web_log_user", user.ID.String(), user.WebLogID.String(), user)
}

func (u *webLogUsers) Delete(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (bool, error) {
	existing, err := u.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}

	pageCount, err := u.s.countDocs(ctx,
		"SELECT COUNT(*) FROM page WHERE web_log_id = ?"+
			" AND json_extract(data, '$.author_id') = ?",
		webLogID.String(), id.String())
	if err != nil {
		return false, err
	}
	postCount, err := u.s.countDocs(ctx,
		"SELECT COUNT(*) FROM post WHERE web_log_id = ?"+
			" AND json_extract(data, '$.author_id') = ?",
		webLogID.String(), id.String())
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

	return u.s.deleteDoc(ctx,
		"DELETE FROM web_log_user WHERE id = ? AND web_log_id = ?",
		id.String(), webLogID.String())
}

func (u *webLogUsers) FindByEmail(ctx context.Context, email string, webLogID models.WebLogID) (*models.WebLogUser, error) {
	var user models.WebLogUser
	ok, err := u.s.findDoc(ctx,
		"SELECT data FROM web_log_user WHERE web_log_id = ?"+
			" AND json_extract(data, '$.email') = ?",
		&user, webLogID.String(), email)
	if !ok || err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *webLogUsers) FindByID(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (*models.WebLogUser, error) {
	var user models.WebLogUser
	ok, err := u.s.findDoc(ctx,
		"SELECT data FROM web_log_user WHERE id = ? AND web_log_id = ?",
		&user, id.String(), webLogID.String())
	if !ok || err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *webLogUsers) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.WebLogUser, error) {
	users, err := findDocs[models.WebLogUser](ctx, u.s,
		"SELECT data FROM web_log_user WHERE web_log_id = ?", webLogID.String())
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
	args := []any{webLogID.String()}
	placeholders := ""
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, id.String())
	}
	users, err := findDocs[models.WebLogUser](ctx, u.s,
		fmt.Sprintf("SELECT data FROM web_log_user WHERE web_log_id = ? AND id IN (%s)",
			placeholders), args...)
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
	return u.s.saveDoc(ctx, "web_log_user", id.String(), webLogID.String(), *existing)
}

func (u *webLogUsers) Update(ctx context.Context, user models.WebLogUser) error {
	existing, err := u.FindByID(ctx, user.ID, user.WebLogID)
	if err != nil || existing == nil {
		return err
	}
	user = userUTC(user)
	return u.s.saveDoc(ctx, "web_log_user", user.ID.String(), user.WebLogID.String(), user)
}
