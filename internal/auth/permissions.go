package auth

// Permission names of the ProjectPlanner group.
const (
	// GroupProjectPlanner is the permission group of the application.
	GroupProjectPlanner = "ProjectPlanner"

	// PermApplicationSettings allows reading application settings.
	PermApplicationSettings = GroupProjectPlanner + ".ApplicationSettings"
	// PermApplicationSettingsCreate allows creating application settings.
	PermApplicationSettingsCreate = PermApplicationSettings + ".Create"
	// PermApplicationSettingsUpdate allows editing application settings.
	PermApplicationSettingsUpdate = PermApplicationSettings + ".Update"
	// PermApplicationSettingsDelete allows deleting application settings.
	PermApplicationSettingsDelete = PermApplicationSettings + ".Delete"
)

// PermissionDefinition is one node of the permission tree.
type PermissionDefinition struct {
	Name        string
	DisplayName string
	Children    []PermissionDefinition
}

// PermissionGroup groups the top level permissions of a module.
type PermissionGroup struct {
	Name        string
	DisplayName string
	Permissions []PermissionDefinition
}

// FlatPermission is a definition with its group and parent resolved.
type FlatPermission struct {
	Name        string
	DisplayName string
	Group       string
	Parent      string
}

// Definitions returns the permission tree of the application.
func Definitions() []PermissionGroup {
	return []PermissionGroup{
		{
			Name:        GroupProjectPlanner,
			DisplayName: "Project planner",
			Permissions: []PermissionDefinition{
				{
					Name:        PermApplicationSettings,
					DisplayName: "Application settings",
					Children: []PermissionDefinition{
						{Name: PermApplicationSettingsCreate, DisplayName: "Create"},
						{Name: PermApplicationSettingsUpdate, DisplayName: "Edit"},
						{Name: PermApplicationSettingsDelete, DisplayName: "Delete"},
					},
				},
			},
		},
	}
}

// Flatten lists every permission of the tree, parents before their children.
func Flatten(groups []PermissionGroup) []FlatPermission {
	var out []FlatPermission

	var walk func(group, parent string, defs []PermissionDefinition)
	walk = func(group, parent string, defs []PermissionDefinition) {
		for _, d := range defs {
			out = append(out, FlatPermission{Name: d.Name, DisplayName: d.DisplayName, Group: group, Parent: parent})
			walk(group, d.Name, d.Children)
		}
	}

	for _, g := range groups {
		walk(g.Name, "", g.Permissions)
	}

	return out
}

// IsDefined reports whether name is part of the permission tree.
func IsDefined(name string) bool {
	for _, p := range Flatten(Definitions()) {
		if p.Name == name {
			return true
		}
	}

	return false
}
