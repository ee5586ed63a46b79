// Command seed fills a database with the default categories, demo accounts and
// a few sample events. Running it twice adds nothing new.
//
//	go run ./cmd/seed          # add what is missing
//	go run ./cmd/seed -reset   # drop every table first
//	go run ./cmd/seed -list    # print users and categories
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/technest/technest-api/cmd/app"
	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository"
	"github.com/technest/technest-api/internal/repository/dao"
	"github.com/technest/technest-api/internal/service"
)

var categoryNames = []string{
	"Frontend",
	"Backend",
	"DevOps",
	"Cloud",
	"AI & ML",
	"Mobile",
	"Data Science",
	"Security",
	"Machine Learning",
	"Cloud Computing",
	"Cybersecurity",
	"Artificial Intelligence",
	"Internet of Things",
}

type account struct {
	name     string
	email    string
	password string
	role     domain.Role
}

var accounts = []account{
	{name: "Admin User", email: "admin@technest.app", password: "admin123", role: domain.RoleAdmin},
	{name: "Event Organizer", email: "organizer@technest.app", password: "organizer123", role: domain.RoleOrganizer},
	{name: "Regular User", email: "user@technest.app", password: "user123", role: domain.RoleUser},
}

func main() {
	reset := flag.Bool("reset", false, "drop every table before seeding")
	list := flag.Bool("list", false, "print users and categories and exit")
	flag.Parse()

	if err := run(*reset, *list); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(reset, list bool) error {
	_, db, err := app.Bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	ctx := context.Background()
	s := newSeeder(db)

	if list {
		return s.list(ctx, os.Stdout)
	}

	if reset {
		zap.L().Warn("dropping all tables")
		if err := dao.DropAllTables(db); err != nil {
			return fmt.Errorf("dao.DropAllTables -> %w", err)
		}
		if err := dao.InitTables(db); err != nil {
			return fmt.Errorf("dao.InitTables -> %w", err)
		}
	}

	return s.seed(ctx)
}

type seeder struct {
	users      *repository.UserRepository
	events     *repository.EventRepository
	categories *repository.CategoryRepository

	auth       *service.AuthService
	userSv     *service.UserService
	categorySv *service.CategoryService
	eventSv    *service.EventService
}

func newSeeder(db *gorm.DB) *seeder {
	users := repository.NewUserRepository(dao.NewUserDAO(db))
	events := repository.NewEventRepository(dao.NewEventDAO(db))
	categories := repository.NewCategoryRepository(dao.NewCategoryDAO(db))
	interests := repository.NewInterestRepository(dao.NewInterestDAO(db))

	return &seeder{
		users:      users,
		events:     events,
		categories: categories,
		auth:       service.NewAuthService(users),
		userSv:     service.NewUserService(users, events, interests),
		categorySv: service.NewCategoryService(categories),
		eventSv: service.NewEventService(events, users, categories, interests, service.DefaultPolicy(), service.EventDefaults{
			City:     "São Paulo",
			State:    "SP",
			Currency: "BRL",
		}),
	}
}

func (s *seeder) seed(ctx context.Context) error {
	added, err := s.categorySv.EnsureCategories(ctx, categoryNames)
	if err != nil {
		return err
	}
	zap.L().Info("categories ready", zap.Int("added", added))

	var organizer domain.User
	for _, a := range accounts {
		user, err := s.ensureAccount(ctx, a)
		if err != nil {
			return err
		}
		if a.role == domain.RoleOrganizer {
			organizer = user
		}
	}

	return s.ensureSampleEvents(ctx, organizer)
}

func (s *seeder) ensureAccount(ctx context.Context, a account) (domain.User, error) {
	user, err := s.auth.CreateAccount(ctx, a.name, a.email, a.password, a.role)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, service.ErrUserEmailExists) {
		return domain.User{}, fmt.Errorf("s.auth.CreateAccount(%s) -> %w", a.email, err)
	}

	user, err = s.users.FindByEmail(ctx, a.email)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.users.FindByEmail(%s) -> %w", a.email, err)
	}
	zap.L().Info("account exists", zap.String("email", a.email))

	return user, nil
}

// ensureSampleEvents only adds events for an organizer who has none yet.
func (s *seeder) ensureSampleEvents(ctx context.Context, organizer domain.User) error {
	existing, err := s.events.FindByOrganizer(ctx, organizer.ID)
	if err != nil {
		return fmt.Errorf("s.events.FindByOrganizer -> %w", err)
	}
	if len(existing) > 0 {
		zap.L().Info("sample events exist", zap.Int("count", len(existing)))
		return nil
	}

	all, err := s.categories.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("s.categories.FindAll -> %w", err)
	}
	bySlug := make(map[string]string, len(all))
	for _, c := range all {
		bySlug[c.Slug] = c.ID
	}

	identity := &domain.Identity{UserID: organizer.ID, Role: organizer.Role}
	for _, draft := range sampleEvents(time.Now(), bySlug) {
		event, err := s.eventSv.CreateEvent(ctx, identity, draft)
		if err != nil {
			return fmt.Errorf("s.eventSv.CreateEvent(%q) -> %w", draft.Title, err)
		}
		zap.L().Info("sample event created", zap.String("slug", event.Slug))
	}

	return nil
}

func sampleEvents(now time.Time, categoryIDs map[string]string) []domain.EventDraft {
	day := func(days, hour int) time.Time {
		d := now.AddDate(0, 0, days)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	}
	ids := func(slugs ...string) []string {
		out := make([]string, 0, len(slugs))
		for _, slug := range slugs {
			if id, ok := categoryIDs[slug]; ok {
				out = append(out, id)
			}
		}
		return out
	}
	capacity := func(n int) *int { return &n }

	return []domain.EventDraft{
		{
			Title:        "React São Paulo Meetup",
			Description:  "Encontro mensal para discutir as últimas novidades do ecossistema React.",
			Date:         day(7, 19),
			Location:     "Auditório TechNest",
			Address:      "Av. Paulista, 1000",
			MaxAttendees: capacity(100),
			CategoryIDs:  ids("frontend"),
		},
		{
			Title:        "Workshop de DevOps na Nuvem",
			Description:  "Pipelines de entrega contínua, infraestrutura como código e observabilidade.",
			Date:         day(14, 9),
			Online:       true,
			MeetingURL:   "https://meet.technest.app/devops",
			MaxAttendees: capacity(50),
			CategoryIDs:  ids("devops", "cloud"),
		},
		{
			Title:       "Go para Backends Escaláveis",
			Description: "Concorrência, filas e bancos de dados em serviços escritos em Go.",
			Date:        day(21, 18),
			Location:    "Hub de Inovação",
			CategoryIDs: ids("backend"),
		},
	}
}

func (s *seeder) list(ctx context.Context, out *os.File) error {
	users, err := s.userSv.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("s.userSv.ListUsers -> %w", err)
	}
	categories, err := s.categorySv.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("s.categorySv.ListCategories -> %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "USERS (%d)\n", len(users))
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format(time.RFC3339))
	}

	fmt.Fprintf(w, "\nCATEGORIES (%d)\n", len(categories))
	fmt.Fprintln(w, "NAME\tSLUG")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Slug)
	}

	return w.Flush()
}
