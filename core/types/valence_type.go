package types

// ValenceTypeKind tags the concrete shape carried by a ValenceType, the
// canonical domain-agnostic data envelope produced by the encoder broker
// (an opaque middleware-type-registry collaborator not modeled here) and
// persisted by data accounts.
type ValenceTypeKind uint8

const (
	// ValenceTypeUnspecified is the zero value and must not be persisted.
	ValenceTypeUnspecified ValenceTypeKind = iota
	// ValenceTypeBalance carries a decoded account balance view.
	ValenceTypeBalance
	// ValenceTypePoolState carries decoded external-venue pool state (e.g.
	// an Osmosis GAMM pool), used by liquidity libraries to validate
	// denom-pair alignment without depending on the venue's SDK.
	ValenceTypePoolState
	// ValenceTypeBytes carries an opaque byte blob for domains or
	// middleware versions this core does not interpret further.
	ValenceTypeBytes
)

// PoolState is the minimal decoded shape a liquidity/position-manager
// library needs to validate a denom pair against.
type PoolState struct {
	PoolID     string
	DenomA     string
	DenomB     string
	ReserveA   Coin
	ReserveB   Coin
	TotalShare Coin
}

// ValenceType is the tagged union a data account stores at a key. Exactly
// one payload field is populated according to Kind; the rest are zero.
type ValenceType struct {
	Kind    ValenceTypeKind
	Balance Coins
	Pool    PoolState
	Bytes   []byte
}

// NewBalanceType wraps a Coins view as a ValenceType.
func NewBalanceType(balance Coins) ValenceType {
	return ValenceType{Kind: ValenceTypeBalance, Balance: balance}
}

// NewPoolStateType wraps decoded pool state as a ValenceType.
func NewPoolStateType(pool PoolState) ValenceType {
	return ValenceType{Kind: ValenceTypePoolState, Pool: pool}
}

// NewBytesType wraps an opaque blob as a ValenceType.
func NewBytesType(b []byte) ValenceType {
	cloned := append([]byte(nil), b...)
	return ValenceType{Kind: ValenceTypeBytes, Bytes: cloned}
}
