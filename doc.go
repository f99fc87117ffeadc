// Package dcadash reconstructs the portfolio of a DCA (dollar-cost averaging) crypto
// bot from the logs it publishes, and values it against observed market prices.
//
// The bot appends every trade to an NDJSON transaction log and samples market prices
// into a second NDJSON stream. Nothing else is trusted: positions are never read from
// a pre-computed snapshot but rebuilt by replaying the log.
//
// The core functionalities include:
//   - Replay: folding BUY transactions into per-symbol positions, with exact
//     decimal arithmetic at a fixed scale of 8 fractional digits.
//   - Price lookup: resolving the latest known price of a symbol as of any instant,
//     never looking ahead.
//   - Valuation: market value and unrealized P/L per position and in total, where
//     totals are the sum of the displayed lines.
//   - Time series: a daily chart of invested amount, market value and unrealized
//     P/L, whose last point always matches the current portfolio.
//   - Loading: fetching the logs from a web server, a local folder or S3, with
//     malformed lines skipped and reported.
//
// This package serves as the foundational logic for the `dcadash` command-line tool
// and its HTTP dashboard API, ensuring that every figure is derived the same way.
package dcadash
