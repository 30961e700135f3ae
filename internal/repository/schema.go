package repository

// SchemaStatements are the idempotent DDL statements run at startup.
// Prices use ReplacingMergeTree keyed by (symbol, ts) so duplicate ticks at
// the same instant collapse on merge.
var SchemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS coinsight`,
	`CREATE TABLE IF NOT EXISTS coinsight.prices (
		ts          DateTime,
		symbol      LowCardinality(String),
		price       Float64,
		market_cap  Float64,
		volume      Float64,
		change_24h  Float64,
		source      LowCardinality(String)
	) ENGINE = ReplacingMergeTree
	ORDER BY (symbol, ts)
	TTL ts + INTERVAL 180 DAY`,
	`CREATE TABLE IF NOT EXISTS coinsight.news_sentiment (
		ts              DateTime,
		title           String,
		source          String,
		url             String,
		category        LowCardinality(String),
		category_weight Float64,
		lexical_score   Float64,
		model_score     Nullable(Float64),
		model_reason    String
	) ENGINE = MergeTree
	ORDER BY ts
	TTL ts + INTERVAL 90 DAY`,
	`CREATE TABLE IF NOT EXISTS coinsight.predictions (
		created_at             DateTime,
		symbol                 LowCardinality(String),
		horizon_days           Int32,
		current_price          Float64,
		predicted_price        Float64,
		direction              LowCardinality(String),
		confidence             Float64,
		sentiment_contribution Float64,
		technical_contribution Float64,
		used_model             UInt8,
		used_technical         UInt8,
		target_date            DateTime
	) ENGINE = MergeTree
	ORDER BY (symbol, created_at)`,
}
