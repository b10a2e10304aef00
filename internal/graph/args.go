package graph

import "finance-tracker/internal/dto"

func inputArg(args map[string]interface{}) map[string]interface{} {
	in, _ := args["input"].(map[string]interface{})
	return in
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func optionalString(args map[string]interface{}, key string) *string {
	s, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func floatArg(args map[string]interface{}, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func optionalFloat(args map[string]interface{}, key string) *float64 {
	if _, ok := args[key]; !ok || args[key] == nil {
		return nil
	}
	f := floatArg(args, key)
	return &f
}

func createTransactionArgs(in map[string]interface{}) dto.CreateTransactionInput {
	return dto.CreateTransactionInput{
		Description: stringArg(in, "description"),
		PaymentType: stringArg(in, "paymentType"),
		Category:    stringArg(in, "category"),
		Amount:      floatArg(in, "amount"),
		Location:    stringArg(in, "location"),
		Date:        stringArg(in, "date"),
	}
}

func updateTransactionArgs(in map[string]interface{}) dto.UpdateTransactionInput {
	return dto.UpdateTransactionInput{
		TransactionID: stringArg(in, "transactionId"),
		Description:   optionalString(in, "description"),
		PaymentType:   optionalString(in, "paymentType"),
		Category:      optionalString(in, "category"),
		Amount:        optionalFloat(in, "amount"),
		Location:      optionalString(in, "location"),
		Date:          optionalString(in, "date"),
	}
}

func signUpArgs(in map[string]interface{}) dto.SignUpInput {
	return dto.SignUpInput{
		Username: stringArg(in, "username"),
		Name:     stringArg(in, "name"),
		Password: stringArg(in, "password"),
		Gender:   stringArg(in, "gender"),
		Email:    stringArg(in, "email"),
	}
}
