// Package postgres implements the PostgreSQL persistence layer for Plat Pursuit.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROFILES AND TROPHIES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create profiles, concepts and the earned-trophy event store
-- Version: 001

CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(100) NOT NULL UNIQUE,
    psn_linked BOOLEAN NOT NULL DEFAULT FALSE,
    is_premium BOOLEAN NOT NULL DEFAULT FALSE,
    joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    last_synced_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_profiles_username ON profiles(username);

-- Games. trophy_count is the full trophy list size, used to detect
-- 100% completed games.
CREATE TABLE IF NOT EXISTS concepts (
    id VARCHAR(50) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    series_slug VARCHAR(100),
    trophy_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_concepts_series ON concepts(series_slug) WHERE series_slug IS NOT NULL;

-- Earned-trophy event store. One row per (profile, trophy); sync
-- upserts rows, derived subsystems only read.
CREATE TABLE IF NOT EXISTS earned_trophies (
    id BIGSERIAL PRIMARY KEY,
    profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    trophy_id VARCHAR(100) NOT NULL,
    concept_id VARCHAR(50) NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
    group_id VARCHAR(20) NOT NULL DEFAULT '',
    grade VARCHAR(10) NOT NULL,
    earned BOOLEAN NOT NULL DEFAULT FALSE,
    earned_at TIMESTAMP WITH TIME ZONE,
    earned_rate DECIMAL(5,2) NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(profile_id, trophy_id),
    CONSTRAINT valid_grade CHECK (grade IN ('bronze', 'silver', 'gold', 'platinum'))
);

CREATE INDEX IF NOT EXISTS idx_earned_trophies_profile ON earned_trophies(profile_id) WHERE earned;
CREATE INDEX IF NOT EXISTS idx_earned_trophies_concept ON earned_trophies(concept_id);
CREATE INDEX IF NOT EXISTS idx_earned_trophies_profile_grade ON earned_trophies(profile_id, grade) WHERE earned;
CREATE INDEX IF NOT EXISTS idx_earned_trophies_earned_at ON earned_trophies(earned_at DESC) WHERE earned_at IS NOT NULL;

-- Denormalized per-profile counters, refreshed by batch jobs.
-- Fast path only: correctness-critical reads recount from the store.
CREATE TABLE IF NOT EXISTS trophy_counts (
    profile_id UUID PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
    platinum INTEGER NOT NULL DEFAULT 0,
    gold INTEGER NOT NULL DEFAULT 0,
    silver INTEGER NOT NULL DEFAULT 0,
    bronze INTEGER NOT NULL DEFAULT 0,
    last_trophy_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Per-game playtime reported by sync.
CREATE TABLE IF NOT EXISTS profile_playtimes (
    profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    concept_id VARCHAR(50) NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
    seconds BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY(profile_id, concept_id)
);

CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_profiles_updated_at ON profiles;
CREATE TRIGGER update_profiles_updated_at
    BEFORE UPDATE ON profiles
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();

DROP TRIGGER IF EXISTS update_earned_trophies_updated_at ON earned_trophies;
CREATE TRIGGER update_earned_trophies_updated_at
    BEFORE UPDATE ON earned_trophies
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_earned_trophies_updated_at ON earned_trophies;
DROP TRIGGER IF EXISTS update_profiles_updated_at ON profiles;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS profile_playtimes;
DROP TABLE IF EXISTS trophy_counts;
DROP TABLE IF EXISTS earned_trophies;
DROP TABLE IF EXISTS concepts;
DROP TABLE IF EXISTS profiles;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE BADGES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create badge ladders, progress and awards
-- Version: 002

-- Curated badge definitions. One row per (series, tier).
CREATE TABLE IF NOT EXISTS badge_definitions (
    id VARCHAR(100) PRIMARY KEY,
    series_slug VARCHAR(100) NOT NULL,
    series_name VARCHAR(255) NOT NULL,
    tier INTEGER NOT NULL,
    required_stages INTEGER NOT NULL,
    concept_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(series_slug, tier),
    CONSTRAINT valid_tier CHECK (tier BETWEEN 1 AND 4),
    CONSTRAINT valid_required_stages CHECK (required_stages > 0)
);

CREATE INDEX IF NOT EXISTS idx_badge_definitions_series ON badge_definitions(series_slug, tier);

-- Per-profile badge progress, refreshed on trophy sync.
CREATE TABLE IF NOT EXISTS badge_progress (
    profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    badge_id VARCHAR(100) NOT NULL REFERENCES badge_definitions(id) ON DELETE CASCADE,
    series_slug VARCHAR(100) NOT NULL,
    tier INTEGER NOT NULL,
    completed_concepts INTEGER NOT NULL DEFAULT 0,
    required_stages INTEGER NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY(profile_id, badge_id)
);

CREATE INDEX IF NOT EXISTS idx_badge_progress_profile ON badge_progress(profile_id);
CREATE INDEX IF NOT EXISTS idx_badge_progress_series ON badge_progress(profile_id, series_slug);

-- Awards are append-only: once issued a tier is never revoked.
-- earned_at is nullable: legacy imports carry awards without dates.
CREATE TABLE IF NOT EXISTS user_badge_awards (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    badge_id VARCHAR(100) NOT NULL REFERENCES badge_definitions(id) ON DELETE CASCADE,
    series_slug VARCHAR(100) NOT NULL,
    tier INTEGER NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE,

    UNIQUE(profile_id, badge_id)
);

CREATE INDEX IF NOT EXISTS idx_user_badge_awards_profile ON user_badge_awards(profile_id, tier DESC);
CREATE INDEX IF NOT EXISTS idx_user_badge_awards_series ON user_badge_awards(series_slug, tier DESC, earned_at ASC);

-- Denormalized XP breakdown, written by the leaderboard rebuild job.
CREATE TABLE IF NOT EXISTS xp_breakdowns (
    profile_id UUID PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
    total_xp INTEGER NOT NULL DEFAULT 0,
    progress_xp INTEGER NOT NULL DEFAULT 0,
    badge_xp INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_xp_breakdowns_total ON xp_breakdowns(total_xp DESC) WHERE total_xp > 0;
`

const migration002Down = `
DROP TABLE IF EXISTS xp_breakdowns;
DROP TABLE IF EXISTS user_badge_awards;
DROP TABLE IF EXISTS badge_progress;
DROP TABLE IF EXISTS badge_definitions;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE MILESTONES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create milestone ladders and awards
-- Version: 003

CREATE TABLE IF NOT EXISTS milestone_definitions (
    id VARCHAR(100) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    criteria_type VARCHAR(50) NOT NULL,
    required_value INTEGER NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(criteria_type, required_value),
    CONSTRAINT valid_required_value CHECK (required_value > 0)
);

CREATE INDEX IF NOT EXISTS idx_milestone_definitions_criteria ON milestone_definitions(criteria_type, required_value);

CREATE TABLE IF NOT EXISTS user_milestone_awards (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    milestone_id VARCHAR(100) NOT NULL REFERENCES milestone_definitions(id) ON DELETE CASCADE,
    criteria_type VARCHAR(50) NOT NULL,
    required_value INTEGER NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(profile_id, milestone_id)
);

CREATE INDEX IF NOT EXISTS idx_user_milestone_awards_profile ON user_milestone_awards(profile_id);
CREATE INDEX IF NOT EXISTS idx_user_milestone_awards_criteria ON user_milestone_awards(profile_id, criteria_type);
`

const migration003Down = `
DROP TABLE IF EXISTS user_milestone_awards;
DROP TABLE IF EXISTS milestone_definitions;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE RATINGS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create rating submissions
-- Version: 004

-- One submission per (profile, concept, group). Empty group_id is the
-- base game scope; DLC trophy groups are separate scopes, never mixed.
CREATE TABLE IF NOT EXISTS rating_submissions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    concept_id VARCHAR(50) NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
    group_id VARCHAR(20) NOT NULL DEFAULT '',
    difficulty INTEGER NOT NULL,
    grindiness INTEGER NOT NULL,
    fun INTEGER NOT NULL,
    overall INTEGER NOT NULL,
    hours DECIMAL(7,1) NOT NULL DEFAULT 0,
    submitted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(profile_id, concept_id, group_id),
    CONSTRAINT valid_difficulty CHECK (difficulty BETWEEN 1 AND 10),
    CONSTRAINT valid_grindiness CHECK (grindiness BETWEEN 1 AND 10),
    CONSTRAINT valid_fun CHECK (fun BETWEEN 1 AND 10),
    CONSTRAINT valid_overall CHECK (overall BETWEEN 1 AND 10),
    CONSTRAINT valid_hours CHECK (hours >= 0)
);

CREATE INDEX IF NOT EXISTS idx_rating_submissions_scope ON rating_submissions(concept_id, group_id);
`

const migration004Down = `
DROP TABLE IF EXISTS rating_submissions;
`
