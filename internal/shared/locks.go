package shared

// CommissionSeedLockKey guards concurrent ledger seeding across workers.
func CommissionSeedLockKey() string {
	return "staybook:commission:seed:lock"
}
