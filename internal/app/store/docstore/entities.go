package docstore

import "github.com/sevahub/sevahub/internal/app/store/rel"

// Table names for the document-backed entities. The users table is not here:
// identity goes through its own typed store.
const (
	TableCommunities  = "communities"
	TableMembers      = "members"
	TableVolunteers   = "volunteers"
	TableDonations    = "donations"
	TableExpenses     = "expenses"
	TableEvents       = "events"
	TableTasks        = "tasks"
	TableApplications = "applications"
)

// Tables lists every document-backed table, in schema-creation order.
func Tables() []string {
	return []string{
		TableCommunities,
		TableMembers,
		TableVolunteers,
		TableDonations,
		TableExpenses,
		TableEvents,
		TableTasks,
		TableApplications,
	}
}

// Registry bundles one Collection per entity table over a shared client.
type Registry struct {
	Communities  *Collection
	Members      *Collection
	Volunteers   *Collection
	Donations    *Collection
	Expenses     *Collection
	Events       *Collection
	Tasks        *Collection
	Applications *Collection
}

// NewRegistry instantiates the per-entity collections.
func NewRegistry(client rel.Client) *Registry {
	return &Registry{
		Communities:  New(client, TableCommunities),
		Members:      New(client, TableMembers),
		Volunteers:   New(client, TableVolunteers),
		Donations:    New(client, TableDonations),
		Expenses:     New(client, TableExpenses),
		Events:       New(client, TableEvents),
		Tasks:        New(client, TableTasks),
		Applications: New(client, TableApplications),
	}
}
