package repository

import (
	"sort"

	"github.com/campusfix/issuedesk/pkg/domain/model"
)

// orderIssues sorts issues most recent first and then by key. Ties under key
// keep the most recent first order.
func orderIssues(issues []*model.Issue, key model.SortKey) {
	sort.Slice(issues, func(i, j int) bool {
		if !issues[i].CreatedAt.Equal(issues[j].CreatedAt) {
			return issues[i].CreatedAt.After(issues[j].CreatedAt)
		}
		return issues[i].ID > issues[j].ID
	})

	if key.Field != "" && key != model.DefaultSortKey {
		model.SortIssues(issues, key)
	}
}

func orderNotifications(notifications []*model.Notification) {
	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
		}
		return notifications[i].ID > notifications[j].ID
	})
}

func paginate(all []*model.Notification, query model.NotificationQuery) *model.NotificationPage {
	page := &model.NotificationPage{
		Notifications: []*model.Notification{},
		Total:         len(all),
	}
	if query.Skip < len(all) {
		end := min(query.Skip+query.Limit, len(all))
		page.Notifications = all[query.Skip:end]
	}
	page.HasMore = page.Total > query.Skip+len(page.Notifications)
	return page
}
