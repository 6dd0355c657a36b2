package queries

import (
	"fmt"

	"github.com/stagehandhq/stagehand/pkg/executor"
)

// Batch labels used in log output.
const (
	LabelDrop      = "DROP"
	LabelCreate    = "CREATE"
	LabelCopy      = "COPY"
	LabelInsert    = "INSERT"
	LabelAnalytics = "ANALYTICS"
)

// CopySources parameterizes the bulk-load statements: where the source data
// lives and which role the warehouse assumes to read it.
type CopySources struct {
	SongData    string
	LogData     string
	LogJSONPath string
	RoleARN     string
	Region      string
}

const (
	dropSongplays     = "DROP TABLE IF EXISTS songplays;"
	dropUsers         = "DROP TABLE IF EXISTS users;"
	dropSongs         = "DROP TABLE IF EXISTS songs;"
	dropArtists       = "DROP TABLE IF EXISTS artists;"
	dropTime          = "DROP TABLE IF EXISTS time;"
	dropStagingSongs  = "DROP TABLE IF EXISTS staging_songs;"
	dropStagingEvents = "DROP TABLE IF EXISTS staging_logs;"
)

const createStagingSongs = `
	CREATE TABLE IF NOT EXISTS staging_songs (
		num_songs INT,
		artist_id VARCHAR,
		artist_latitude FLOAT,
		artist_longitude FLOAT,
		artist_location VARCHAR,
		artist_name VARCHAR,
		song_id VARCHAR,
		title VARCHAR,
		duration FLOAT,
		year INT
	)
	DISTSTYLE EVEN;
`

const createStagingEvents = `
	CREATE TABLE IF NOT EXISTS staging_logs (
		artist VARCHAR,
		auth VARCHAR,
		firstName VARCHAR,
		gender VARCHAR(1),
		itemInSession INT,
		lastName VARCHAR,
		length FLOAT,
		level VARCHAR,
		location VARCHAR,
		method VARCHAR,
		page VARCHAR,
		registration BIGINT,
		sessionId INT,
		song VARCHAR,
		status INT,
		ts BIGINT,
		userAgent VARCHAR,
		userId INT
	)
	DISTSTYLE EVEN;
`

const createSongplays = `
	CREATE TABLE IF NOT EXISTS songplays (
		songplay_id BIGINT IDENTITY(0,1) PRIMARY KEY,
		start_time TIMESTAMP NOT NULL SORTKEY,
		user_id INT NOT NULL,
		level VARCHAR,
		song_id VARCHAR,
		artist_id VARCHAR,
		session_id INT,
		location VARCHAR,
		user_agent VARCHAR
	)
	DISTSTYLE EVEN;
`

const createUsers = `
	CREATE TABLE IF NOT EXISTS users (
		user_id INT PRIMARY KEY SORTKEY,
		first_name VARCHAR,
		last_name VARCHAR,
		gender VARCHAR(1),
		level VARCHAR
	)
	DISTSTYLE ALL;
`

const createSongs = `
	CREATE TABLE IF NOT EXISTS songs (
		song_id VARCHAR PRIMARY KEY SORTKEY,
		title VARCHAR,
		artist_id VARCHAR,
		year INT,
		duration FLOAT
	)
	DISTSTYLE ALL;
`

const createArtists = `
	CREATE TABLE IF NOT EXISTS artists (
		artist_id VARCHAR PRIMARY KEY SORTKEY,
		name VARCHAR,
		location VARCHAR,
		latitude FLOAT,
		longitude FLOAT
	)
	DISTSTYLE ALL;
`

const createTime = `
	CREATE TABLE IF NOT EXISTS time (
		start_time TIMESTAMP PRIMARY KEY SORTKEY,
		hour INT,
		day INT,
		week INT,
		month INT,
		year INT,
		weekday INT
	)
	DISTSTYLE ALL;
`

const copyStagingSongsTemplate = `
	COPY staging_songs
	FROM '%s'
	IAM_ROLE '%s'
	FORMAT AS JSON 'auto'
	REGION '%s';
`

const copyStagingLogsTemplate = `
	COPY staging_logs
	FROM '%s'
	IAM_ROLE '%s'
	FORMAT AS JSON '%s'
	REGION '%s';
`

// insertSongplays joins log events against the song catalog. The LEFT JOIN
// keeps plays whose song/artist pair has no catalog match (song_id and
// artist_id stay null); rows with a null artist are dropped entirely.
const insertSongplays = `
	INSERT INTO songplays (
		start_time, user_id, level, song_id, artist_id, session_id, location, user_agent
	)
	SELECT
		TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second' AS start_time,
		se.userId AS user_id,
		se.level,
		ss.song_id,
		ss.artist_id,
		se.sessionId AS session_id,
		se.location,
		se.userAgent AS user_agent
	FROM staging_logs se
	LEFT JOIN staging_songs ss
		ON se.song = ss.title
		AND se.artist = ss.artist_name
	WHERE se.artist IS NOT NULL;
`

const insertUsers = `
	INSERT INTO users (
		user_id, first_name, last_name, gender, level
	)
	SELECT DISTINCT
		se.userId,
		se.firstName,
		se.lastName,
		se.gender,
		se.level
	FROM staging_logs se
	WHERE se.userId IS NOT NULL;
`

const insertSongs = `
	INSERT INTO songs (
		song_id, title, artist_id, year, duration
	)
	SELECT DISTINCT
		ss.song_id,
		ss.title,
		ss.artist_id,
		ss.year,
		ss.duration
	FROM staging_songs ss
	WHERE ss.song_id IS NOT NULL;
`

const insertArtists = `
	INSERT INTO artists (
		artist_id, name, location, latitude, longitude
	)
	SELECT DISTINCT
		ss.artist_id,
		ss.artist_name,
		ss.artist_location,
		ss.artist_latitude,
		ss.artist_longitude
	FROM staging_songs ss
	WHERE ss.artist_id IS NOT NULL;
`

const insertTime = `
	INSERT INTO time (
		start_time, hour, day, week, month, year, weekday
	)
	SELECT DISTINCT
		TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second' AS start_time,
		EXTRACT(hour FROM TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second') AS hour,
		EXTRACT(day FROM TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second') AS day,
		EXTRACT(week FROM TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second') AS week,
		EXTRACT(month FROM TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second') AS month,
		EXTRACT(year FROM TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second') AS year,
		EXTRACT(weekday FROM TIMESTAMP 'epoch' + (se.ts / 1000) * INTERVAL '1 second') AS weekday
	FROM staging_logs se
	WHERE se.artist IS NOT NULL;
`

const topPlayedSongs = `
	SELECT
		s.title AS song_title,
		a.name AS artist_name,
		COUNT(sp.songplay_id) AS play_count
	FROM songplays sp
	JOIN songs s ON sp.song_id = s.song_id
	JOIN artists a ON sp.artist_id = a.artist_id
	GROUP BY s.title, a.name
	ORDER BY play_count DESC
	LIMIT 10;
`

const userLevelDistribution = `
	SELECT
		level,
		COUNT(DISTINCT user_id) AS user_count
	FROM users
	GROUP BY level
	ORDER BY user_count DESC;
`

// DropTables returns the batch removing every pipeline table. All statements
// carry IF EXISTS, so running the batch twice in a row is clean.
func DropTables() executor.Batch {
	return executor.Batch{
		Label: LabelDrop,
		Statements: []string{
			dropSongplays,
			dropUsers,
			dropSongs,
			dropArtists,
			dropTime,
			dropStagingSongs,
			dropStagingEvents,
		},
	}
}

// CreateTables returns the batch creating the staging tables and the star
// schema. Staging tables come first; the fact and dimension tables have no
// inter-statement dependencies.
func CreateTables() executor.Batch {
	return executor.Batch{
		Label: LabelCreate,
		Statements: []string{
			createStagingEvents,
			createStagingSongs,
			createSongplays,
			createArtists,
			createSongs,
			createTime,
			createUsers,
		},
	}
}

// CopyStaging returns the bulk-load batch for the staging tables, templated
// with the S3 sources and the access role from provisioning.
func CopyStaging(src CopySources) executor.Batch {
	return executor.Batch{
		Label: LabelCopy,
		Statements: []string{
			fmt.Sprintf(copyStagingSongsTemplate, src.SongData, src.RoleARN, src.Region),
			fmt.Sprintf(copyStagingLogsTemplate, src.LogData, src.RoleARN, src.LogJSONPath, src.Region),
		},
	}
}

// InsertTransforms returns the batch populating the star schema from the
// staging tables. Dimensions load before the fact table.
func InsertTransforms() executor.Batch {
	return executor.Batch{
		Label: LabelInsert,
		Statements: []string{
			insertUsers,
			insertSongs,
			insertArtists,
			insertTime,
			insertSongplays,
		},
	}
}

// SampleAnalytics returns the read-only demonstration queries run against the
// populated schema.
func SampleAnalytics() executor.Batch {
	return executor.Batch{
		Label: LabelAnalytics,
		Statements: []string{
			topPlayedSongs,
			userLevelDistribution,
		},
	}
}
