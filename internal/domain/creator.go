package domain

// CreatorRecord binds a traded asset to the account entitled to the creator
// share of swap fees. Corresponds to creators table in PostgreSQL.
// One creator per asset; rebinding goes through an explicit admin reassign.
type CreatorRecord struct {
	Asset        AssetID   // PRIMARY KEY
	Creator      AccountID // fee destination for the creator share
	RegisteredAt int64     // Unix timestamp in milliseconds
	UpdatedAt    int64     // last reassign timestamp (ms), equals RegisteredAt until reassigned
}
