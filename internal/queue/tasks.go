package queue

const (
	TypeAuditRecord    = "audit:record"
	TypeContractExpire = "contract:expire"
)

// AuditRecordPayload carries one audit entry from the mutating request
// to the worker that persists it. Snapshots are pre-marshalled JSON.
type AuditRecordPayload struct {
	ActorID    string `json:"actor_id,omitempty"`
	ActorEmail string `json:"actor_email,omitempty"`
	ActorName  string `json:"actor_name,omitempty"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id,omitempty"`
	OldData    string `json:"old_data,omitempty"`
	NewData    string `json:"new_data,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// ContractExpirePayload triggers a sweep marking active contracts past
// their end date as expired.
type ContractExpirePayload struct{}
