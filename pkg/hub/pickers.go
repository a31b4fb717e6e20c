package hub

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ovsov/mphub/internal/config"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/pkg/picker"
)

// orgItem adapts an organization to the picker item contract
type orgItem struct {
	org models.Organization
}

func (o orgItem) ID() string          { return o.org.ID }
func (o orgItem) DisplayName() string { return o.org.Name }
func (o orgItem) Code() string        { return o.org.Code }
func (o orgItem) Description() string { return o.org.Name }

// mpItem adapts a marketplace to the picker item contract
type mpItem struct {
	mp models.Marketplace
}

func (i mpItem) ID() string          { return i.mp.ID }
func (i mpItem) DisplayName() string { return i.mp.Name }
func (i mpItem) Code() string        { return i.mp.Code }
func (i mpItem) Description() string { return i.mp.Name }

// openOrgPicker stacks the organization picker. The previous choice is
// preselected when it still exists; a remembered id that was deleted
// since just leaves nothing selected.
func (m Model) openOrgPicker() tea.Cmd {
	database := m.DB
	source := func() ([]orgItem, error) {
		orgs, err := database.ListOrganizations()
		if err != nil {
			return nil, err
		}
		items := make([]orgItem, len(orgs))
		for i, org := range orgs {
			items[i] = orgItem{org: org}
		}
		return items, nil
	}

	var opts []picker.Option[orgItem]
	if last, err := config.GetLastOrg(m.BaseDir); err == nil && last != "" {
		opts = append(opts, picker.WithPreselect[orgItem](last))
	}

	_, cmd := picker.Open(m.Frames, "Filter by organization", source,
		func(it orgItem) tea.Cmd {
			return func() tea.Msg { return orgPickedMsg{org: it.org} }
		},
		nil, opts...)
	return cmd
}

// openMarketplacePicker stacks the marketplace picker with a custom row
// that shows the region and flags sandbox endpoints
func (m Model) openMarketplacePicker() tea.Cmd {
	database := m.DB
	source := func() ([]mpItem, error) {
		mps, err := database.ListMarketplaces()
		if err != nil {
			return nil, err
		}
		items := make([]mpItem, len(mps))
		for i, mp := range mps {
			items[i] = mpItem{mp: mp}
		}
		return items, nil
	}

	opts := []picker.Option[mpItem]{
		picker.WithRowRender[mpItem](marketplaceRow),
	}
	if last, err := config.GetLastMarketplace(m.BaseDir); err == nil && last != "" {
		opts = append(opts, picker.WithPreselect[mpItem](last))
	}

	_, cmd := picker.Open(m.Frames, "Filter by marketplace", source,
		func(it mpItem) tea.Cmd {
			return func() tea.Msg { return mpPickedMsg{mp: it.mp} }
		},
		nil, opts...)
	return cmd
}

// marketplaceRow renders one marketplace line: code, name, region and a
// sandbox badge when the endpoint is not production
func marketplaceRow(it mpItem, width int, selected bool) string {
	parts := []string{pad(it.mp.Code, 10), it.mp.Name}
	if it.mp.Region != "" {
		parts = append(parts, hintStyle.Render(it.mp.Region))
	}
	if it.mp.Sandbox {
		parts = append(parts, sandboxBadgeStyle.Render("[sandbox]"))
	}
	return strings.Join(parts, "  ")
}
