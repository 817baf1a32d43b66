package units

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// EtherDecimals is the number of fractional digits of one ether in wei.
const EtherDecimals = 18

var weiPerEther = new(big.Int).SetUint64(params.Ether)

// FormatEther renders a wei amount as a decimal ether string, for example
// 1000000000000000000 -> "1.0" and 1500000000000000 -> "0.0015".
//
// The result always carries at least one fractional digit and never carries
// trailing zeros beyond it.
func FormatEther(wei *big.Int) string {
	return formatWithDivisor(wei, weiPerEther, EtherDecimals)
}

func formatWithDivisor(value *big.Int, divisor *big.Int, decimals int) string {
	if value == nil {
		value = new(big.Int)
	}
	sign := ""
	if value.Sign() < 0 {
		sign = "-"
	}
	absolute := new(big.Int).Abs(value)
	whole, fraction := new(big.Int).QuoRem(absolute, divisor, new(big.Int))

	fractionString := ""
	if decimals > 0 {
		fractionString = fraction.String()
		fractionString = strings.Repeat("0", decimals-len(fractionString)) + fractionString
		fractionString = strings.TrimRight(fractionString, "0")
	}
	if fractionString == "" {
		fractionString = "0"
	}
	return sign + whole.String() + "." + fractionString
}
