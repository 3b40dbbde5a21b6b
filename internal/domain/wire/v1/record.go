// Package wirev1 decodes exchange market-data wire messages into tagged
// records. It does no I/O: callers feed it immutable byte slices and
// re-present truncated frames once more bytes are available.
package wirev1

// RecordType tags the concrete type carried by a Record.
type RecordType uint8

const (
	// Length-prefixed (big-endian) feed record kinds.
	RecordSystemEvent RecordType = iota
	RecordStockDirectory
	RecordAddOrder
	RecordAddOrderAttributed
	RecordExecuted
	RecordExecutedWithPrice
	RecordCancel
	RecordDelete
	RecordReplace
	RecordTrade

	// Typed-header (little-endian) feed record kinds.
	RecordQuoteUpdate
	RecordTradeReport
	RecordPriceLevelUpdate
	RecordSecurityDirectory
	RecordTradingStatus
	RecordAuctionInfo
	RecordTradeBreak
)

// String renders the record kind for logging.
func (t RecordType) String() string {
	switch t {
	case RecordSystemEvent:
		return "SystemEvent"
	case RecordStockDirectory:
		return "StockDirectory"
	case RecordAddOrder:
		return "AddOrder"
	case RecordAddOrderAttributed:
		return "AddOrderAttributed"
	case RecordExecuted:
		return "Executed"
	case RecordExecutedWithPrice:
		return "ExecutedWithPrice"
	case RecordCancel:
		return "Cancel"
	case RecordDelete:
		return "Delete"
	case RecordReplace:
		return "Replace"
	case RecordTrade:
		return "Trade"
	case RecordQuoteUpdate:
		return "QuoteUpdate"
	case RecordTradeReport:
		return "TradeReport"
	case RecordPriceLevelUpdate:
		return "PriceLevelUpdate"
	case RecordSecurityDirectory:
		return "SecurityDirectory"
	case RecordTradingStatus:
		return "TradingStatus"
	case RecordAuctionInfo:
		return "AuctionInfo"
	case RecordTradeBreak:
		return "TradeBreak"
	default:
		return "Unknown"
	}
}

// Side is a resting order's direction.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "B"
	}
	return "S"
}

// Record is the sum type emitted by both decoders. Exactly one of the
// embedded payload structs is meaningful, selected by Type.
type Record struct {
	Type      RecordType
	Timestamp uint64

	SystemEvent       SystemEvent
	StockDirectory    StockDirectory
	AddOrder          AddOrder
	Executed          Executed
	ExecutedWithPrice ExecutedWithPrice
	Cancel            Cancel
	Delete            Delete
	Replace           Replace
	Trade             Trade
	QuoteUpdate       QuoteUpdate
	TradeReport       TradeReport
	PriceLevelUpdate  PriceLevelUpdate
	SecurityDirectory SecurityDirectory
	TradingStatus     TradingStatus
}

// SystemEvent carries an exchange-wide lifecycle signal (market open,
// close, halt). Drives no book operation.
type SystemEvent struct {
	StockLocate     uint16
	TrackingNumber  uint16
	EventCode       byte
}

// StockDirectory (length-prefixed 'R') registers a tradable symbol and its
// static attributes. Drives no book operation.
type StockDirectory struct {
	StockLocate           uint16
	TrackingNumber        uint16
	Symbol                string
	MarketCategory        byte
	FinancialStatus       byte
	RoundLotSize          uint32
	RoundLotsOnly         byte
	IssueClassification   byte
	IssueSubType          [2]byte
	Authenticity          byte
	ShortSaleThreshold    byte
	IPOFlag               byte
	LULDReferencePriceTier byte
	ETPFlag               byte
	ETPLeverageFactor     uint32
	InverseIndicator      byte
}

// AddOrder represents a new resting order entering the book. Used for both
// the plain ('A') and MPID-attributed ('F') wire variants; Attribution is
// empty for the former.
type AddOrder struct {
	StockLocate    uint16
	TrackingNumber uint16
	OrderRefNum    uint64
	Side           Side
	Shares         uint32
	Symbol         string
	Price          int64
	Attributed     bool
	Attribution    [4]byte
}

// Executed reports a full or partial fill against a resting order.
type Executed struct {
	StockLocate     uint16
	TrackingNumber  uint16
	OrderRefNum     uint64
	ExecutedShares  uint32
	MatchNumber     uint64
}

// ExecutedWithPrice is Executed plus the (possibly non-displayed)
// execution price.
type ExecutedWithPrice struct {
	Executed
	Printable      byte
	ExecutionPrice int64
}

// Cancel reduces a resting order's quantity by CancelledShares; the book
// removes the order once nothing of it remains.
type Cancel struct {
	StockLocate      uint16
	TrackingNumber   uint16
	OrderRefNum      uint64
	CancelledShares  uint32
}

// Delete removes a resting order entirely.
type Delete struct {
	StockLocate    uint16
	TrackingNumber uint16
	OrderRefNum    uint64
}

// Replace atomically swaps a resting order for a new one at a (possibly)
// new price/quantity.
type Replace struct {
	StockLocate           uint16
	TrackingNumber        uint16
	OriginalOrderRefNum   uint64
	NewOrderRefNum        uint64
	Shares                uint32
	Price                 int64
}

// Trade reports an execution against a non-displayed order. Informational
// only — it never mutates the displayed book.
type Trade struct {
	StockLocate    uint16
	TrackingNumber uint16
	OrderRefNum    uint64
	Side           Side
	Shares         uint32
	Symbol         string
	Price          int64
	MatchNumber    uint64
}

// QuoteUpdate is a typed-header aggregate top-of-book quote. Informational.
type QuoteUpdate struct {
	Flags    byte
	Symbol   string
	BidSize  uint32
	BidPrice int64
	AskSize  uint32
	AskPrice int64
}

// TradeReport is a typed-header trade print. Informational.
type TradeReport struct {
	Flags   byte
	Symbol  string
	Size    uint32
	Price   int64
	TradeID uint64
}

// PriceLevelUpdate is typed-header MBP data: an absolute aggregate size at
// a price level. Never applied to the per-order book (spec Non-goal: no
// MBO reconstruction from MBP deltas).
type PriceLevelUpdate struct {
	Flags    byte
	Symbol   string
	Size     uint32
	Price    int64
	UpdateID uint32
}

// BidSide reports the side implied by Flags bit 0 (0 = bid, 1 = ask).
func (p PriceLevelUpdate) BidSide() Side {
	if p.Flags&0x1 == 0 {
		return SideBuy
	}
	return SideSell
}

// SecurityDirectory is the typed-header symbol directory record.
type SecurityDirectory struct {
	Flags             byte
	Symbol            string
	RoundLot          uint32
	AdjustedPOCClose  int64
	LULDTier          byte
}

// TradingStatus reports a per-symbol trading state change. Informational.
type TradingStatus struct {
	Status byte
	Symbol string
	Reason [4]byte
}
