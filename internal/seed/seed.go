package seed

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/todoshare-be/internal/models"
	"github.com/isdelr/todoshare-be/internal/services"
	"github.com/isdelr/todoshare-be/internal/store"
	"github.com/rs/zerolog/log"
)

// SamplePassword is the password of every sample account.
const SamplePassword = "password123"

var sampleUsers = []string{"admin", "john", "jane"}

type sampleList struct {
	name  string
	todos []models.Todo
}

func todo(text string, status models.Status) models.Todo {
	return models.Todo{ID: uuid.New().String(), Text: text, Status: status, Priority: models.PriorityMedium}
}

func sampleLists() []sampleList {
	return []sampleList{
		{"Work Tasks", []models.Todo{
			todo("Complete project proposal", models.StatusTodo),
			todo("Review code pull requests", models.StatusInProgress),
			todo("Update documentation", models.StatusCompleted),
			todo("Prepare for team meeting", models.StatusTodo),
		}},
		{"Personal Tasks", []models.Todo{
			todo("Pay utility bills", models.StatusTodo),
			todo("Call mom", models.StatusCompleted),
			todo("Schedule dentist appointment", models.StatusTodo),
		}},
		{"Shopping List", []models.Todo{
			todo("Milk", models.StatusTodo),
			todo("Eggs", models.StatusTodo),
			todo("Bread", models.StatusTodo),
			todo("Fruits", models.StatusInProgress),
		}},
		{"Fitness Goals", []models.Todo{
			todo("30 minutes cardio", models.StatusInProgress),
			todo("Meal prep for the week", models.StatusTodo),
			todo("Track water intake", models.StatusCompleted),
		}},
	}
}

// Load registers the sample accounts and gives admin the sample lists. It
// does nothing when users already exist, and skips the lists when any are
// already stored.
func Load(users services.UserServiceProvider, lists *store.ListStore) error {
	if users.UserCount() > 0 {
		log.Info().Msg("Users already exist. Skipping sample data.")
		return nil
	}

	var adminID string
	for _, name := range sampleUsers {
		res, err := users.Register(name, name+"@example.com", SamplePassword)
		if err != nil {
			return fmt.Errorf("seeding user %s: %w", name, err)
		}
		if name == "admin" {
			adminID = res.User.ID
		}
	}
	log.Info().Int("count", len(sampleUsers)).Msg("Added sample users")

	if lists.ListCount() > 0 {
		log.Info().Msg("Todo lists already exist. Skipping sample lists.")
		return nil
	}
	for _, sl := range sampleLists() {
		list := lists.CreateList(sl.name, adminID)
		for _, t := range sl.todos {
			lists.AddTodo(list.ID, t)
		}
	}
	log.Info().Int("count", len(sampleLists())).Msg("Added sample todo lists")
	return nil
}
