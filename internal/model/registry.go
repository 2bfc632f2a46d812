package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Application{},
		&Case{},
		&Contract{},
		&TimelineEvent{},
		&Document{},
		&DocumentTag{},
		&DocumentTagAssignment{},
		&AITagSuggestion{},
		&CalendarIntegration{},
		&CalendarEvent{},
		&NotificationType{},
		&Notification{},
		&Payment{},
	}
}
