package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/repository"
	"gorm.io/gorm"
)

// Fixed seed UUIDs so repeated migrations and cross-environment dumps agree
// on the reference rows.
const (
	roleCreatorID     = "a1f6f9cf-6f0a-4de5-9df5-0d2b2f3c0001"
	roleProjectLeadID = "a1f6f9cf-6f0a-4de5-9df5-0d2b2f3c0002"

	categoryProjectCompletionID   = "b7c91d24-53ae-4a87-8c10-4e5a6b7c0001"
	categoryProjectStaleID        = "b7c91d24-53ae-4a87-8c10-4e5a6b7c0002"
	categoryMilestoneCompletionID = "b7c91d24-53ae-4a87-8c10-4e5a6b7c0003"
	categoryMilestonePaymentID    = "b7c91d24-53ae-4a87-8c10-4e5a6b7c0004"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createUsersAndRoles(),
		createProjects(),
		createMilestones(),
		createMembers(),
		createNotificationTables(),
		seedReferenceRows(),
	})

	return m.Migrate()
}

func createUsersAndRoles() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_users_and_roles",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.UserModel{}, &repository.RoleModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.RoleModel{}, &repository.UserModel{})
		},
	}
}

func createProjects() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_projects",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ProjectModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_projects_projected_end ON projects (date_projected_end) WHERE NOT is_completed`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ProjectModel{})
		},
	}
}

func createMilestones() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_milestones",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.MilestoneModel{}); err != nil {
				return err
			}
			statements := []string{
				`ALTER TABLE project_milestones
					ADD CONSTRAINT fk_milestones_project
					FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE`,
				`CREATE INDEX IF NOT EXISTS idx_milestones_projected_end ON project_milestones (date_projected_end) WHERE NOT is_completed`,
			}
			for _, sql := range statements {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.MilestoneModel{})
		},
	}
}

func createMembers() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_members",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.MemberModel{}); err != nil {
				return err
			}
			statements := []string{
				`ALTER TABLE project_members
					ADD CONSTRAINT fk_members_project
					FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE`,
				`ALTER TABLE project_members
					ADD CONSTRAINT fk_members_role
					FOREIGN KEY (role_id) REFERENCES project_roles (id)`,
				`CREATE INDEX IF NOT EXISTS idx_members_project_role_joined ON project_members (project_id, role_id, date_joined)`,
			}
			for _, sql := range statements {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.MemberModel{})
		},
	}
}

func createNotificationTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_create_notification_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(
				&repository.CategoryModel{},
				&repository.NotificationModel{},
				&repository.NotificationLogModel{},
			); err != nil {
				return err
			}
			statements := []string{
				`ALTER TABLE notifications
					ADD CONSTRAINT fk_notifications_category
					FOREIGN KEY (category_id) REFERENCES notification_categories (id)`,
				`ALTER TABLE notifications
					ADD CONSTRAINT fk_notifications_project
					FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE`,
				`ALTER TABLE notifications
					ADD CONSTRAINT fk_notifications_milestone
					FOREIGN KEY (milestone_id) REFERENCES project_milestones (id) ON DELETE CASCADE`,
				`ALTER TABLE notification_logs
					ADD CONSTRAINT fk_logs_notification
					FOREIGN KEY (notification_id) REFERENCES notifications (id) ON DELETE CASCADE`,
				`CREATE INDEX IF NOT EXISTS idx_logs_user_created ON notification_logs (user_id, date_created)`,
			}
			for _, sql := range statements {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&repository.NotificationLogModel{},
				&repository.NotificationModel{},
				&repository.CategoryModel{},
			)
		},
	}
}

func seedReferenceRows() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000006_seed_reference_rows",
		Migrate: func(tx *gorm.DB) error {
			roles := []repository.RoleModel{
				{ID: roleCreatorID, Name: domain.RoleCreator},
				{ID: roleProjectLeadID, Name: domain.RoleProjectLead},
			}
			for _, role := range roles {
				if err := tx.Exec(
					`INSERT INTO project_roles (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
					role.ID, role.Name,
				).Error; err != nil {
					return err
				}
			}

			categories := []repository.CategoryModel{
				{
					ID:      categoryProjectCompletionID,
					Name:    domain.CategoryProjectCompletionOverdue,
					Message: "Project has passed its projected end date without being completed.",
				},
				{
					ID:      categoryProjectStaleID,
					Name:    domain.CategoryProjectStale,
					Message: "Project has had no activity for an extended period.",
				},
				{
					ID:      categoryMilestoneCompletionID,
					Name:    domain.CategoryMilestoneCompletionOverdue,
					Message: "Milestone has passed its projected end date without being completed.",
				},
				{
					ID:      categoryMilestonePaymentID,
					Name:    domain.CategoryMilestonePaymentOverdue,
					Message: "Milestone payment is overdue past the grace period.",
				},
			}
			for _, category := range categories {
				if err := tx.Exec(
					`INSERT INTO notification_categories (id, name, message) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`,
					category.ID, category.Name, category.Message,
				).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			statements := []string{
				`DELETE FROM notification_categories`,
				`DELETE FROM project_roles`,
			}
			for _, sql := range statements {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
