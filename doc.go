// Package main provides the entry point of the ProjectPlanner api.
// It stores tenant scoped application settings in a relational database
// (MySQL, PostgreSQL or SQLite through gorm) and serves them through a
// JSON api built with fiber. Run "projectplanner start" to serve and
// "projectplanner migrate" to prepare the database.
package main
