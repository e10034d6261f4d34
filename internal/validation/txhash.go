// Package validation содержит функции валидации входных данных.
package validation

// TxHashLength — длина текстового идентификатора транзакции сети TRON.
const TxHashLength = 64

// IsValidTxHash проверяет, что строка является идентификатором транзакции:
// ровно 64 шестнадцатеричных символа, без учёта регистра. Проверка локальная
// и выполняется до любого сетевого вызова.
func IsValidTxHash(hash string) bool {
	if len(hash) != TxHashLength {
		return false
	}

	for i := 0; i < len(hash); i++ {
		ch := hash[i]
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}

	return true
}
