package output

import (
	"strings"

	"github.com/ovsov/mphub/internal/models"
)

// TreeNode represents a node in a tree structure for rendering
type TreeNode struct {
	ID       string
	Label    string
	Detail   string
	Status   models.Status
	Children []TreeNode
}

// TreeRenderOptions configures tree rendering behavior
type TreeRenderOptions struct {
	MaxDepth   int  // 0 = unlimited
	ShowStatus bool // Whether to show status indicator
	ShowIDs    bool // Whether to show row ids
}

// FormatStatus renders a status in its bracketed list form
func FormatStatus(s models.Status) string {
	return "[" + string(s) + "]"
}

// statusMark returns a status indicator symbol
func statusMark(s models.Status) string {
	switch s {
	case models.StatusActive:
		return " ●" // ●
	case models.StatusPaused:
		return " ○" // ○
	case models.StatusBroken:
		return " ✗" // ✗
	case models.StatusRevoked:
		return " ⊘" // ⊘
	default:
		return ""
	}
}

// BuildCatalogTree groups connection views under their organizations.
// Organizations keep catalog order; connections keep listing order.
func BuildCatalogTree(orgs []models.Organization, views []models.ConnectionView) []TreeNode {
	byOrg := make(map[string][]TreeNode)
	for _, v := range views {
		label := v.MarketplaceCode
		if v.Label != "" {
			label += "/" + v.Label
		}
		byOrg[v.OrgID] = append(byOrg[v.OrgID], TreeNode{
			ID:     v.ID,
			Label:  label,
			Detail: v.MarketplaceName,
			Status: v.Status,
		})
	}

	var nodes []TreeNode
	for _, org := range orgs {
		nodes = append(nodes, TreeNode{
			ID:       org.ID,
			Label:    org.Code,
			Detail:   org.Name,
			Children: byOrg[org.ID],
		})
	}
	return nodes
}

// RenderTree renders a tree starting from a single root node
// Returns the complete tree as a string (without the root - just children)
func RenderTree(root TreeNode, opts TreeRenderOptions) string {
	lines := renderTreeNodes(root.Children, opts, 0, "")
	return strings.Join(lines, "\n")
}

// RenderTreeLines renders multiple root nodes and returns individual lines
// Useful for embedding trees in other output
func RenderTreeLines(roots []TreeNode, opts TreeRenderOptions) []string {
	return renderTreeNodes(roots, opts, 0, "")
}

// renderTreeNodes recursively renders tree nodes
func renderTreeNodes(nodes []TreeNode, opts TreeRenderOptions, depth int, prefix string) []string {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	var lines []string

	for i, node := range nodes {
		isLast := i == len(nodes)-1

		// Build connector
		connector := "├── " // ├──
		if isLast {
			connector = "└── " // └──
		}

		// Build the line content
		var parts []string
		parts = append(parts, node.Label)
		if opts.ShowIDs && node.ID != "" {
			parts = append(parts, "("+node.ID+")")
		}
		if node.Detail != "" {
			parts = append(parts, node.Detail)
		}

		if opts.ShowStatus && node.Status != "" {
			parts = append(parts, FormatStatus(node.Status)+statusMark(node.Status))
		}

		line := prefix + connector + strings.Join(parts, "  ")
		lines = append(lines, line)

		// Build prefix for children
		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   " // │
		}

		// Recurse for children
		childLines := renderTreeNodes(node.Children, opts, depth+1, childPrefix)
		lines = append(lines, childLines...)
	}

	return lines
}
