package i18n

var english = &catalog{
	locale: "en",
	templates: map[MessageID]Template{
		MsgDepositInfo: {
			Text: "USDT TRC20 deposit. Send at least {minimum} USDT to {address} and submit the transaction hash within {minutes} minutes.",
			Keys: []string{"address", "minimum", "minutes"},
		},
		MsgVerificationSuccess: {
			Text: "Payment verified. {amount} USDT credited to your balance.",
			Keys: []string{"amount"},
		},
		MsgVerificationFailed: {
			Text: "Verification failed: {reason}",
			Keys: []string{"reason"},
		},
		MsgInvalidTxHash: {
			Text: "Invalid transaction hash format. A TRC20 transaction hash is 64 hexadecimal characters.",
		},
		MsgNoDepositSession: {
			Text: "No active deposit session. Open a deposit first.",
		},
		MsgReasonNotFound: {
			Text: "Transaction not found on the blockchain. Try again shortly.",
		},
		MsgReasonTransportFailure: {
			Text: "Error connecting to the blockchain API. Please try again.",
		},
		MsgReasonExecutionFailed: {
			Text: "Transaction failed on the blockchain.",
		},
		MsgReasonNotATokenTransfer: {
			Text: "Not a TRC20 transaction.",
		},
		MsgReasonWrongContract: {
			Text: "Not a USDT transaction. Please send USDT only.",
		},
		MsgReasonNotATransferCall: {
			Text: "Not a transfer transaction.",
		},
		MsgReasonMalformedPayload: {
			Text: "Invalid transaction data.",
		},
		MsgReasonWrongRecipient: {
			Text: "Transaction sent to wrong address. Please send to the correct deposit address.",
		},
		MsgReasonAmountTooLow: {
			Text: "Amount too low: {amount} USDT (minimum {minimum}).",
			Keys: []string{"amount", "minimum"},
		},
		MsgReasonAmountOverflow: {
			Text: "Transfer amount is outside the supported range.",
		},
		MsgReasonDuplicateTransaction: {
			Text: "This transaction has already been credited.",
		},
	},
}

var russian = &catalog{
	locale: "ru",
	templates: map[MessageID]Template{
		MsgDepositInfo: {
			Text: "Депозит USDT TRC20. Отправьте не менее {minimum} USDT на адрес {address} и пришлите хеш транзакции в течение {minutes} минут.",
			Keys: []string{"address", "minimum", "minutes"},
		},
		MsgVerificationSuccess: {
			Text: "Платёж подтверждён. {amount} USDT зачислены на баланс.",
			Keys: []string{"amount"},
		},
		MsgVerificationFailed: {
			Text: "Проверка не пройдена: {reason}",
			Keys: []string{"reason"},
		},
		MsgInvalidTxHash: {
			Text: "Неверный формат хеша транзакции. Хеш TRC20-транзакции — 64 шестнадцатеричных символа.",
		},
		MsgNoDepositSession: {
			Text: "Нет открытой сессии депозита. Сначала откройте депозит.",
		},
		MsgReasonNotFound: {
			Text: "Транзакция не найдена в блокчейне. Повторите попытку чуть позже.",
		},
		MsgReasonTransportFailure: {
			Text: "Ошибка подключения к API блокчейна. Повторите попытку.",
		},
		MsgReasonExecutionFailed: {
			Text: "Транзакция завершилась неуспешно в блокчейне.",
		},
		MsgReasonNotATokenTransfer: {
			Text: "Это не TRC20-транзакция.",
		},
		MsgReasonWrongContract: {
			Text: "Это не перевод USDT. Отправляйте только USDT.",
		},
		MsgReasonNotATransferCall: {
			Text: "Это не transfer-транзакция.",
		},
		MsgReasonMalformedPayload: {
			Text: "Некорректные данные транзакции.",
		},
		MsgReasonWrongRecipient: {
			Text: "Перевод выполнен на другой адрес. Отправляйте на указанный адрес депозита.",
		},
		MsgReasonAmountTooLow: {
			Text: "Сумма слишком мала: {amount} USDT (минимум {minimum}).",
			Keys: []string{"amount", "minimum"},
		},
		MsgReasonAmountOverflow: {
			Text: "Сумма перевода выходит за пределы поддерживаемого диапазона.",
		},
		MsgReasonDuplicateTransaction: {
			Text: "Эта транзакция уже была зачислена.",
		},
	},
}
