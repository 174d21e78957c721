package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"brigadeportal/internal/adapters/dlb"
	"brigadeportal/internal/adapters/http/middleware"
	eventStore "brigadeportal/internal/adapters/storage/event"
	memberStore "brigadeportal/internal/adapters/storage/member"
	musterStore "brigadeportal/internal/adapters/storage/muster"
	synclogStore "brigadeportal/internal/adapters/storage/synclog"
	"brigadeportal/internal/domain/holiday"
	"brigadeportal/internal/domain/training"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore     memberStore.Store
	AttendanceStore musterStore.Store
	SyncEntryStore  synclogStore.EntryStore
	SyncStateStore  synclogStore.StateStore
	EventStore      eventStore.Store
}

// TrainingDefaults carries the brigade's standing training night settings,
// applied when a generate request omits them.
type TrainingDefaults struct {
	Weekday         time.Weekday
	StartTime       string // HH:MM
	DurationMinutes int
	HorizonMonths   int
}

// Deps holds everything the handlers need beyond storage.
type Deps struct {
	BrigadeID     string
	Region        holiday.Region
	WebhookSecret string
	DLB           dlb.Client
	Generator     *training.Generator
	Training      TrainingDefaults
	Now           func() time.Time
	GenerateID    func() string
}

type server struct {
	stores *Stores
	deps   Deps
}

// NewMux wires HTTP handlers for the app.
func NewMux(stores *Stores, deps Deps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.GenerateID == nil {
		deps.GenerateID = uuid.NewString
	}
	s := &server{stores: stores, deps: deps}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Timing())

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/webhook/dlb", s.handleWebhook)
		r.Post("/sync/trigger", s.handleSyncTrigger)
		r.Get("/sync/status", s.handleSyncStatus)
		r.Post("/training/generate", s.handleTrainingGenerate)
		r.Get("/training/schedule.ics", s.handleTrainingICS)
		r.Get("/members", s.handleMemberList)
		r.Get("/members/{id}/attendance/stats", s.handleAttendanceStats)
		r.Get("/members/{id}/attendance/recent", s.handleRecentAttendance)
	})
	return r
}
