package dataprep

// Declared feature schema of the churn_features mart. Columns absent from an
// input table degrade with a warning; they are never an error.
var FeatureColumns = []string{
	"tenure_months",
	"tenure_days",
	"monthly_charges",
	"contract_type",
	"plan_type",
	"recency_days",
	"frequency",
	"monetary",
	"avg_transaction_value",
	"total_transactions",
	"days_since_last_transaction",
	"recency_score",
	"frequency_score",
	"monetary_score",
	"rfm_composite_score",
	"total_events",
	"active_days",
	"login_count",
	"feature_usage_count",
	"support_ticket_count",
	"app_crash_count",
	"engagement_rate",
	"avg_events_per_active_day",
	"avg_session_duration_minutes",
	"days_since_last_event",
	"events_last_7_days",
	"events_last_30_days",
	"events_last_90_days",
	"logins_last_30_days",
	"feature_usage_last_30_days",
	"days_since_last_login",
	"features_per_login",
	"problem_event_rate_pct",
	"engagement_recency_score",
	"engagement_frequency_score",
	"feature_adoption_score",
	"engagement_composite_score",
	"age",
	"gender",
	"segment",
	"acquisition_channel",
	"device_type",
	"initial_referral_credits",
}

var CategoricalColumns = []string{
	"contract_type",
	"plan_type",
	"gender",
	"segment",
	"acquisition_channel",
	"device_type",
}

const TargetColumn = "churn_flag"

// MissingCategory is the literal category substituted for a missing
// categorical value, at fit time and at inference time.
const MissingCategory = "MISSING"
