package hub

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/vault"
	"github.com/ovsov/mphub/pkg/overlay"
)

var formFrameStyle = overlay.FrameStyle{
	WidthPercent:  0.6,
	HeightPercent: 0.75,
	MinWidth:      52,
	MaxWidth:      70,
	MinHeight:     16,
	MaxHeight:     22,
}

// openConnectionForm stacks the new connection form. Without catalog
// entries to choose from there is nothing to open, so it reports
// instead.
func (m Model) openConnectionForm() (Model, tea.Cmd) {
	orgs, err := m.DB.ListOrganizations()
	if err != nil {
		return m, m.setStatus("Load organizations: "+err.Error(), true)
	}
	mps, err := m.DB.ListMarketplaces()
	if err != nil {
		return m, m.setStatus("Load marketplaces: "+err.Error(), true)
	}
	if len(orgs) == 0 || len(mps) == 0 {
		return m, m.setStatus("Catalog is empty: add organizations and marketplaces first", true)
	}

	f := newConnectionForm(m.DB, m.Vault, orgs, mps)
	h, cmd := m.Frames.Push(f,
		overlay.WithClass("form"),
		overlay.WithStyle(formFrameStyle),
		overlay.WithCloseGuard(func() bool { return !f.dirty() || f.armed }),
	)
	f.close = h.Close
	return m, cmd
}

// formContent hosts the new connection form. A first escape on a form
// with typed input only arms the close; the second one goes through.
type formContent struct {
	form  *huh.Form
	close func()

	db    *db.DB
	vault *vault.Vault

	orgID string
	mpID  string
	label string
	token string

	armed     bool
	submitted bool
}

// newConnectionForm builds the form over the current catalog entries
func newConnectionForm(database *db.DB, v *vault.Vault, orgs []models.Organization, mps []models.Marketplace) *formContent {
	f := &formContent{db: database, vault: v}

	orgOpts := make([]huh.Option[string], len(orgs))
	for i, org := range orgs {
		orgOpts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", org.Name, org.Code), org.ID)
	}
	mpOpts := make([]huh.Option[string], len(mps))
	for i, mp := range mps {
		label := fmt.Sprintf("%s (%s)", mp.Name, mp.Code)
		if mp.Sandbox {
			label += " [sandbox]"
		}
		mpOpts[i] = huh.NewOption(label, mp.ID)
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("org").
				Title("Organization").
				Options(orgOpts...).
				Value(&f.orgID),
			huh.NewSelect[string]().
				Key("marketplace").
				Title("Marketplace").
				Options(mpOpts...).
				Value(&f.mpID),
			huh.NewInput().
				Key("label").
				Title("Label").
				Placeholder("primary").
				CharLimit(60).
				Validate(requiredField("label")).
				Value(&f.label),
			huh.NewInput().
				Key("token").
				Title("API token").
				Placeholder("leave empty to add later").
				EchoMode(huh.EchoModePassword).
				CharLimit(200).
				Value(&f.token),
		),
	).WithShowHelp(true)

	return f
}

// requiredField rejects blank input
func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// dirty reports whether closing now would lose typed input
func (f *formContent) dirty() bool {
	return strings.TrimSpace(f.label) != "" || f.token != ""
}

func (f *formContent) Init() tea.Cmd { return f.form.Init() }

func (f *formContent) Update(msg tea.Msg) (overlay.Content, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		// Escape is handled here so the form never aborts itself; the
		// host decides through the close guard whether the frame goes.
		if key.String() == "esc" {
			f.armed = true
			return f, nil
		}
		f.armed = false
	}

	next, cmd := f.form.Update(msg)
	if nf, ok := next.(*huh.Form); ok {
		f.form = nf
	}

	if f.form.State == huh.StateCompleted && !f.submitted {
		f.submitted = true
		return f, tea.Batch(cmd, f.submit())
	}
	return f, cmd
}

func (f *formContent) View(width, height int) string {
	bodyH := height
	var warn string
	if f.armed {
		warn = statusErrStyle.Render("Unsaved input. Escape again to discard.")
		bodyH--
	}

	f.form.WithWidth(width).WithHeight(bodyH)
	view := strings.TrimRight(f.form.View(), "\n")
	if warn != "" {
		view += "\n" + warn
	}
	return view
}

// submit writes the connection and its credential, closes the frame and
// reports the outcome
func (f *formContent) submit() tea.Cmd {
	conn := &models.Connection{
		OrgID:         f.orgID,
		MarketplaceID: f.mpID,
		Label:         strings.TrimSpace(f.label),
		Status:        models.StatusActive,
	}
	err := f.db.CreateConnection(conn)
	if err == nil && f.token != "" {
		var box []byte
		if box, err = f.vault.Seal([]byte(f.token)); err == nil {
			err = f.db.PutCredential(conn.ID, box)
		}
	}

	f.close()
	label := conn.Label
	return func() tea.Msg {
		return connSavedMsg{label: label, err: err}
	}
}
