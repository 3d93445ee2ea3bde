package server

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/domain/models"
)

var allowedTaskPriorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

var allowedTaskStatuses = map[string]bool{
	"pending":     true,
	"in-progress": true,
	"completed":   true,
}

var allowedTaskLabels = map[string]bool{
	"work":     true,
	"personal": true,
	"urgent":   true,
	"misc":     true,
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// listTasks сортирует задачи по убыванию createdAt, применяет фильтры
// из query-параметров (логическое И) и возвращает страницу результата.
func listTasks(tasks []models.Task, params url.Values) models.TaskListResponse {
	sortTasksByCreatedAt(tasks)

	page := parseListParam(params.Get("page"), defaultPage)
	limit := parseListParam(params.Get("limit"), defaultLimit)

	filtered := filterTasks(tasks, params)

	totalData := len(filtered)
	totalPages := 0
	if totalData > 0 {
		totalPages = (totalData + limit - 1) / limit
	}

	start := (page - 1) * limit
	end := start + limit
	if start > totalData {
		start = totalData
	}
	if end > totalData {
		end = totalData
	}

	data := make([]models.Task, 0, end-start)
	for i := start; i < end; i++ {
		data = append(data, filtered[i])
	}

	return models.TaskListResponse{
		TotalData:   totalData,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
		Data:        data,
	}
}

// filterTasks применяет каждый распознанный фильтр; неизвестные ключи
// игнорируются, как и status/priority со значением вне допустимого набора.
func filterTasks(tasks []models.Task, params url.Values) []models.Task {
	filtered := tasks

	for key, values := range params {
		if len(values) == 0 {
			continue
		}
		value := strings.ToLower(values[0])

		switch key {
		case "search":
			filtered = keepTasks(filtered, func(t models.Task) bool {
				if strings.Contains(strings.ToLower(t.Title), value) ||
					strings.Contains(strings.ToLower(t.Description), value) {
					return true
				}
				for _, label := range t.Labels {
					if strings.Contains(strings.ToLower(label), value) {
						return true
					}
				}
				return false
			})
		case "labels":
			filtered = keepTasks(filtered, func(t models.Task) bool {
				for _, label := range t.Labels {
					if strings.ToLower(label) == value {
						return true
					}
				}
				return false
			})
		case "status":
			if allowedTaskStatuses[value] {
				filtered = keepTasks(filtered, func(t models.Task) bool {
					return strings.ToLower(t.Status) == value
				})
			}
		case "priority":
			if allowedTaskPriorities[value] {
				filtered = keepTasks(filtered, func(t models.Task) bool {
					return strings.ToLower(t.Priority) == value
				})
			}
		case "completed":
			wantCompleted := value == "true"
			filtered = keepTasks(filtered, func(t models.Task) bool {
				return t.Completed == wantCompleted
			})
		}
	}

	return filtered
}

func keepTasks(tasks []models.Task, keep func(models.Task) bool) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result
}

func sortTasksByCreatedAt(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return parseTaskTime(tasks[i].CreatedAt).After(parseTaskTime(tasks[j].CreatedAt))
	})
}

func parseTaskTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseListParam приводит page/limit к минимуму 1; нечисловое или
// отсутствующее значение заменяется значением по умолчанию.
func parseListParam(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	return n
}
