package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var wordOnes = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var wordTens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

func twoDigitWords(n int64) string {
	if n < 20 {
		return wordOnes[n]
	}
	t := n / 10
	o := n % 10
	if o == 0 {
		return wordTens[t]
	}
	return wordTens[t] + " " + wordOnes[o]
}

func threeDigitWords(n int64) string {
	h := n / 100
	rest := n % 100
	var b strings.Builder
	if h > 0 {
		b.WriteString(wordOnes[h])
		b.WriteString(" Hundred")
		if rest > 0 {
			b.WriteString(" ")
		}
	}
	if rest > 0 {
		b.WriteString(twoDigitWords(rest))
	}
	return b.String()
}

// NumberToWordsIndian spells a number in the Indian system (crore, lakh,
// thousand).
func NumberToWordsIndian(num int64) string {
	if num == 0 {
		return "Zero"
	}

	crore := num / 10000000
	num %= 10000000
	lakh := num / 100000
	num %= 100000
	thousand := num / 1000
	hundred := num % 1000

	var parts []string
	if crore > 0 {
		parts = append(parts, threeDigitWords(crore)+" Crore")
	}
	if lakh > 0 {
		parts = append(parts, threeDigitWords(lakh)+" Lakh")
	}
	if thousand > 0 {
		parts = append(parts, threeDigitWords(thousand)+" Thousand")
	}
	if hundred > 0 {
		parts = append(parts, threeDigitWords(hundred))
	}
	return strings.Join(parts, " ")
}

// AmountToWordsIndian spells a rupee amount for the invoice footer, e.g.
// "One Thousand Five Hundred Rupees and Fifty Paise Only".
func AmountToWordsIndian(amount decimal.Decimal) string {
	rupees := amount.Floor().IntPart()
	paise := amount.Sub(amount.Floor()).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	parts := []string{"Zero Rupees"}
	if rupees > 0 {
		parts = []string{NumberToWordsIndian(rupees) + " Rupees"}
	}
	if paise > 0 {
		parts = append(parts, NumberToWordsIndian(paise)+" Paise")
	}
	return strings.Join(parts, " and ") + " Only"
}
