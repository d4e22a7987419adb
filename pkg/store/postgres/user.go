package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/quillcms/quillcms/pkg/models"
	"github.com/quillcms/quillcms/pkg/store"
)

type webLogUsers struct {
	db *gorm.DB
}

func (u *webLogUsers) Add(ctx context.Context, user models.WebLogUser) error {
	row := userToRow(user)
	return u.db.WithContext(ctx).Create(&row).Error
}

func (u *webLogUsers) Delete(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (bool, error) {
	existing, err := u.FindByID(ctx, id, webLogID)
	if err != nil || existing == nil {
		return false, err
	}

	var pageCount, postCount int64
	err = u.db.WithContext(ctx).Model(&pageRow{}).
		Where("web_log_id = ? AND author_id = ?", webLogID, id).Count(&pageCount).Error
	if err != nil {
		return false, err
	}
	err = u.db.WithContext(ctx).Model(&postRow{}).
		Where("web_log_id = ? AND author_id = ?", webLogID, id).Count(&postCount).Error
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

	err = u.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID).Delete(&webLogUserRow{}).Error
	return err == nil, err
}

func (u *webLogUsers) FindByEmail(ctx context.Context, email string, webLogID models.WebLogID) (*models.WebLogUser, error) {
	row, err := firstOrNil[webLogUserRow](u.db.WithContext(ctx).
		Where("web_log_id = ? AND email = ?", webLogID, email))
	if row == nil || err != nil {
		return nil, err
	}
	user := row.toModel()
	return &user, nil
}

func (u *webLogUsers) FindByID(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) (*models.WebLogUser, error) {
	row, err := firstOrNil[webLogUserRow](u.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", id, webLogID))
	if row == nil || err != nil {
		return nil, err
	}
	user := row.toModel()
	return &user, nil
}

func (u *webLogUsers) FindByWebLog(ctx context.Context, webLogID models.WebLogID) ([]models.WebLogUser, error) {
	var rows []webLogUserRow
	err := u.db.WithContext(ctx).
		Where("web_log_id = ?", webLogID).
		Order("LOWER(CASE WHEN preferred_name <> '' THEN preferred_name ELSE first_name || ' ' || last_name END)").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]models.WebLogUser, len(rows))
	for i, r := range rows {
		result[i] = r.toModel()
	}
	return result, nil
}

func (u *webLogUsers) FindNames(ctx context.Context, webLogID models.WebLogID, ids []models.WebLogUserID) ([]store.UserName, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []webLogUserRow
	err := u.db.WithContext(ctx).
		Where("web_log_id = ? AND id IN ?", webLogID, ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	names := make([]store.UserName, len(rows))
	for i, r := range rows {
		names[i] = store.UserName{ID: r.ID, Name: r.toModel().DisplayName()}
	}
	return names, nil
}

func (u *webLogUsers) Restore(ctx context.Context, users []models.WebLogUser) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([]webLogUserRow, len(users))
	for i, user := range users {
		rows[i] = userToRow(user)
	}
	return u.db.WithContext(ctx).CreateInBatches(rows, store.RestoreBatchSize).Error
}

func (u *webLogUsers) SetLastSeen(ctx context.Context, id models.WebLogUserID, webLogID models.WebLogID) error {
	return u.db.WithContext(ctx).Model(&webLogUserRow{}).
		Where("id = ? AND web_log_id = ?", id, webLogID).
		Update("last_seen_on", time.Now().UTC()).Error
}

func (u *webLogUsers) Update(ctx context.Context, user models.WebLogUser) error {
	existing, err := u.FindByID(ctx, user.ID, user.WebLogID)
	if err != nil || existing == nil {
		return err
	}
	row := userToRow(user)
	return u.db.WithContext(ctx).
		Where("id = ? AND web_log_id = ?", user.ID, user.WebLogID).
		Select("*").Omit("id").Updates(&row).Error
}
