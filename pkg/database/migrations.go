package database

// Migrations are applied in order. Never change an existing entry; append a new one.
var migrations = []string{
	`
CREATE TABLE migrations
(
    version int primary key not null,
    created timestamp with time zone not null
);

CREATE TABLE site_binding
(
    project   text primary key not null,
    site_id   text not null,
    site_name text not null,
    created   timestamp with time zone not null
);

CREATE TABLE credential
(
    project text primary key not null,
    token   text not null,
    updated timestamp with time zone not null
);

INSERT INTO migrations (version, created)
VALUES (1, now());
`,
}
