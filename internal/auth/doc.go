// Package auth provides authentication and authorization for the api.
//
// Users sign in with a local username and Argon2id hashed password. Every
// user has one role, a role holds a set of permissions. Permission names
// are defined in a small tree:
//
//	ProjectPlanner                           (group)
//	└── ProjectPlanner.ApplicationSettings
//	    ├── ProjectPlanner.ApplicationSettings.Create
//	    ├── ProjectPlanner.ApplicationSettings.Update
//	    └── ProjectPlanner.ApplicationSettings.Delete
//
// RequirePermission protects routes. With Auth.AllowAnonymous set in the
// configuration the check is skipped, a present session is still used to
// attribute writes to its user.
//
// Example usage:
//
//	authService := auth.NewService(db, cfg.Auth)
//
//	app.Post("/api/app/application-setting",
//	    authService.RequirePermission(auth.PermApplicationSettingsCreate),
//	    handler,
//	)
package auth
