package storage

// likes_count is maintained exclusively by model.ToggleLike and must equal
// the number of emoji_likes rows for the emoji at every commit point.
const schema = `
create table if not exists emojis (
	id bigserial primary key,
	image_url text not null,
	prompt text not null,
	likes_count bigint not null default 0 check (likes_count >= 0),
	creator_user_id text not null,
	created_at timestamptz not null default now()
);

create table if not exists emoji_likes (
	user_id text not null,
	emoji_id bigint not null references emojis (id) on delete cascade,
	primary key (user_id, emoji_id)
);

create table if not exists profiles (
	user_id text primary key,
	email text not null default ''
);
`
