package repository

// DropSchema removes every table, dependents first
var DropSchema = []string{
	`DROP TABLE IF EXISTS reviews CASCADE`,
	`DROP TABLE IF EXISTS feedback CASCADE`,
	`DROP TABLE IF EXISTS ratings CASCADE`,
	`DROP TABLE IF EXISTS activities CASCADE`,
	`DROP TABLE IF EXISTS category_preferences CASCADE`,
	`DROP TABLE IF EXISTS categories CASCADE`,
	`DROP TABLE IF EXISTS members CASCADE`,
	`DROP TABLE IF EXISTS teams CASCADE`,
	`DROP TABLE IF EXISTS audit_logs CASCADE`,
	`DROP TABLE IF EXISTS users CASCADE`,
	`DROP TABLE IF EXISTS organizations CASCADE`,
}

// Schema creates every table and index. It is idempotent.
// Uniqueness on soft-deletable tables only covers live rows.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id UUID PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		slug VARCHAR(60) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_organizations_slug ON organizations(slug) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		external_id VARCHAR(255) NOT NULL UNIQUE,
		email VARCHAR(320) NOT NULL DEFAULT '',
		first_name VARCHAR(120) NOT NULL DEFAULT '',
		last_name VARCHAR(120) NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		organization_id UUID REFERENCES organizations(id),
		role VARCHAR(20) NOT NULL DEFAULT 'member' CHECK (role IN ('owner', 'member')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_organization ON users(organization_id) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_id UUID REFERENCES users(id),
		external_id VARCHAR(255) NOT NULL,
		action VARCHAR(40) NOT NULL,
		details JSONB,
		ip_address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_external ON audit_logs(external_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL REFERENCES organizations(id),
		name VARCHAR(120) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_org_name ON teams(organization_id, lower(name)) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS members (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL REFERENCES organizations(id),
		team_id UUID NOT NULL REFERENCES teams(id),
		name VARCHAR(120) NOT NULL,
		title VARCHAR(120),
		email VARCHAR(320),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_members_team ON members(team_id) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_org_email ON members(organization_id, lower(email))
		WHERE deleted_at IS NULL AND email IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		organization_id UUID REFERENCES organizations(id),
		name VARCHAR(80) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories(COALESCE(organization_id, '00000000-0000-0000-0000-000000000000'), lower(name))
		WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS category_preferences (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		favorite BOOLEAN NOT NULL DEFAULT FALSE,
		hidden BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, category_id)
	)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id UUID PRIMARY KEY,
		category_id UUID NOT NULL REFERENCES categories(id),
		organization_id UUID REFERENCES organizations(id),
		team_id UUID REFERENCES teams(id),
		name VARCHAR(120) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ,
		CHECK (team_id IS NULL OR organization_id IS NOT NULL)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_name ON activities(category_id, COALESCE(organization_id, '00000000-0000-0000-0000-000000000000'), lower(name))
		WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS ratings (
		id UUID PRIMARY KEY,
		member_id UUID NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		activity_id UUID NOT NULL REFERENCES activities(id),
		rater_id UUID REFERENCES users(id),
		value SMALLINT NOT NULL CHECK (value BETWEEN 1 AND 5),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_member_created ON ratings(member_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS feedback (
		id UUID PRIMARY KEY,
		member_id UUID NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		author_id UUID REFERENCES users(id),
		body TEXT NOT NULL CHECK (length(body) > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_member_created ON feedback(member_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL REFERENCES organizations(id),
		member_id UUID NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		period_start TIMESTAMPTZ NOT NULL,
		period_end TIMESTAMPTZ NOT NULL,
		version INTEGER NOT NULL CHECK (version > 0),
		status VARCHAR(20) NOT NULL DEFAULT 'DRAFT' CHECK (status IN ('DRAFT', 'PUBLISHED', 'ACKNOWLEDGED')),
		document JSONB NOT NULL,
		created_by UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		published_at TIMESTAMPTZ,
		acknowledged_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ,
		CHECK (period_start < period_end)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_version ON reviews(member_id, period_start, period_end, version)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_org_member ON reviews(organization_id, member_id) WHERE deleted_at IS NULL`,
}
