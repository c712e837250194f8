package handler

import (
	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		PasswordSet: u.Credential.IsSet(),
		CreatedAt:   u.CreatedAt.UTC(),
	}
}

func toUserListResponse(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func toUserRefResponse(r domain.UserRef) userRefResponse {
	return userRefResponse{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Role:        string(r.Role),
	}
}

func toTaskResponse(d domain.TaskDetail) taskResponse {
	assigned := make([]userRefResponse, len(d.Assigned))
	for i, r := range d.Assigned {
		assigned[i] = toUserRefResponse(r)
	}
	comments := make([]commentResponse, len(d.Comments))
	for i, cm := range d.Comments {
		comments[i] = commentResponse{
			Text:      cm.Text,
			Author:    toUserRefResponse(cm.Author),
			CreatedAt: cm.CreatedAt.UTC(),
		}
	}
	return taskResponse{
		Name:        d.Name,
		Description: d.Description,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		Assigned:    assigned,
		Comments:    comments,
	}
}

func toTaskListResponse(details []domain.TaskDetail) []taskResponse {
	out := make([]taskResponse, len(details))
	for i, d := range details {
		out[i] = toTaskResponse(d)
	}
	return out
}

func toArchiveResponse(entries []domain.ArchiveEntry) []archiveEntryResponse {
	out := make([]archiveEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = archiveEntryResponse{
			ArchivedAt: e.ArchivedAt.UTC(),
			Task:       toTaskResponse(e.Task),
		}
	}
	return out
}

func toStatisticsResponse(s ports.Statistics) statisticsResponse {
	return statisticsResponse{
		Tasks: taskStatisticsResponse{
			Total:    s.Tasks.Total,
			Pending:  s.Tasks.Pending,
			Finished: s.Tasks.Finished,
		},
		Users: userStatisticsResponse{
			Total:       s.Users.Total,
			Admins:      s.Users.Admins,
			Supervisors: s.Users.Supervisors,
			Users:       s.Users.Users,
		},
	}
}
