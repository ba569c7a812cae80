// Package worker - scheduler chạy các task định kỳ theo project. Mỗi task có
// lịch riêng (mỗi N phút hoặc hằng ngày lúc HH:MM UTC) và được gọi một lần
// cho mỗi project đang bật ở mỗi tick. Semantics là at-least-once: task phải
// tự idempotent.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	authmodels "meta_response/internal/api/auth/models"
	authsvc "meta_response/internal/api/auth/service"
	"meta_response/internal/logger"
)

// ScheduleKind các kiểu lịch được hỗ trợ
const (
	ScheduleEvery = "every" // Chạy mỗi N phút
	ScheduleDaily = "daily" // Chạy hằng ngày lúc HH:MM UTC
)

// Schedule mô tả lịch chạy của một task
type Schedule struct {
	Kind     string
	Interval time.Duration // Cho kiểu every
	Hour     int           // Cho kiểu daily (UTC)
	Minute   int
}

// ParseSchedule đọc spec lịch dạng "every 15m" hoặc "daily 18:00"
func ParseSchedule(spec string) (Schedule, error) {
	fields := strings.Fields(strings.TrimSpace(spec))
	if len(fields) != 2 {
		return Schedule{}, fmt.Errorf("lịch không hợp lệ: %q", spec)
	}

	switch fields[0] {
	case ScheduleEvery:
		interval, err := time.ParseDuration(fields[1])
		if err != nil {
			return Schedule{}, fmt.Errorf("khoảng thời gian không hợp lệ trong %q: %w", spec, err)
		}
		if interval < time.Minute {
			return Schedule{}, fmt.Errorf("khoảng thời gian tối thiểu là 1 phút: %q", spec)
		}
		return Schedule{Kind: ScheduleEvery, Interval: interval}, nil

	case ScheduleDaily:
		parts := strings.Split(fields[1], ":")
		if len(parts) != 2 {
			return Schedule{}, fmt.Errorf("giờ không hợp lệ trong %q", spec)
		}
		hour, err := strconv.Atoi(parts[0])
		if err != nil || hour < 0 || hour > 23 {
			return Schedule{}, fmt.Errorf("giờ không hợp lệ trong %q", spec)
		}
		minute, err := strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return Schedule{}, fmt.Errorf("phút không hợp lệ trong %q", spec)
		}
		return Schedule{Kind: ScheduleDaily, Hour: hour, Minute: minute}, nil
	}
	return Schedule{}, fmt.Errorf("kiểu lịch không được hỗ trợ: %q", spec)
}

// EverySchedule tạo lịch chạy mỗi interval
func EverySchedule(interval time.Duration) Schedule {
	if interval < time.Minute {
		interval = time.Minute
	}
	return Schedule{Kind: ScheduleEvery, Interval: interval}
}

// DailySchedule tạo lịch chạy hằng ngày lúc hour:minute UTC
func DailySchedule(hour, minute int) Schedule {
	return Schedule{Kind: ScheduleDaily, Hour: hour, Minute: minute}
}

// Due kiểm tra task tới hạn chưa, dựa trên lần chạy trước.
// Với lịch daily, task được coi là tới hạn khi now đã qua mốc HH:MM của ngày
// hiện tại (UTC) và lần chạy trước nằm trước mốc đó.
func (s Schedule) Due(now, lastRun time.Time) bool {
	switch s.Kind {
	case ScheduleEvery:
		return now.Sub(lastRun) >= s.Interval
	case ScheduleDaily:
		nowUTC := now.UTC()
		mark := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), s.Hour, s.Minute, 0, 0, time.UTC)
		return !nowUTC.Before(mark) && lastRun.UTC().Before(mark)
	}
	return false
}

// TaskFunc là thân của một task, chạy trong phạm vi một project
type TaskFunc func(ctx context.Context, project authmodels.Project) error

// GlobalTaskFunc là thân của task không gắn với project nào
type GlobalTaskFunc func(ctx context.Context) error

// Task là một công việc định kỳ có tên
type Task struct {
	Name      string
	Schedule  Schedule
	Run       TaskFunc
	RunGlobal GlobalTaskFunc

	mu      sync.Mutex // TryLock: tick sau bỏ qua nếu lần trước còn đang chạy
	lastRun time.Time
}

// Scheduler giữ danh sách task và tick từng phút
type Scheduler struct {
	projects *authsvc.ProjectService
	tasks    []*Task
	tick     time.Duration
}

// NewScheduler tạo scheduler mới
func NewScheduler() (*Scheduler, error) {
	projects, err := authsvc.NewProjectService()
	if err != nil {
		return nil, err
	}
	return &Scheduler{projects: projects, tick: time.Minute}, nil
}

// AddTask đăng ký một task chạy cho từng project đang bật
func (s *Scheduler) AddTask(name string, schedule Schedule, run TaskFunc) {
	s.tasks = append(s.tasks, &Task{Name: name, Schedule: schedule, Run: run})
}

// AddGlobalTask đăng ký một task chạy một lần mỗi kỳ, không theo project
func (s *Scheduler) AddGlobalTask(name string, schedule Schedule, run GlobalTaskFunc) {
	s.tasks = append(s.tasks, &Task{Name: name, Schedule: schedule, RunGlobal: run})
}

// Start chạy scheduler cho tới khi context bị hủy
func (s *Scheduler) Start(ctx context.Context) {
	log := logger.GetAppLogger()
	log.WithField("tasks", len(s.tasks)).Info("⏰ [SCHEDULER] Starting scheduler...")

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("⏰ [SCHEDULER] Scheduler stopped")
			return
		case now := <-ticker.C:
			s.runDueTasks(ctx, now)
		}
	}
}

func (s *Scheduler) runDueTasks(ctx context.Context, now time.Time) {
	for _, task := range s.tasks {
		if !task.Schedule.Due(now, task.lastRun) {
			continue
		}
		if !task.mu.TryLock() {
			// Lần chạy trước còn dang dở; at-least-once nên lần sau chạy bù
			continue
		}
		task.lastRun = now
		go func(t *Task) {
			defer t.mu.Unlock()
			s.runTask(ctx, t)
		}(task)
	}
}

// runTask gọi task cho từng project đang bật; lỗi của một project không chặn
// các project còn lại
func (s *Scheduler) runTask(ctx context.Context, task *Task) {
	log := logger.GetAppLogger()

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"task":  task.Name,
				"panic": r,
			}).Error("⏰ [SCHEDULER] Panic trong task, sẽ chạy lại ở tick sau")
		}
	}()

	if task.RunGlobal != nil {
		if err := task.RunGlobal(ctx); err != nil {
			log.WithError(err).WithField("task", task.Name).Warn("⏰ [SCHEDULER] Task thất bại")
		}
		return
	}

	projects, err := s.projects.FindEnabled(ctx)
	if err != nil {
		log.WithError(err).WithField("task", task.Name).Error("⏰ [SCHEDULER] Không lấy được danh sách project")
		return
	}

	for _, project := range projects {
		if err := task.Run(ctx, project); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"task":    task.Name,
				"project": project.ID.Hex(),
			}).Warn("⏰ [SCHEDULER] Task thất bại cho project, bỏ qua")
		}
	}
}
