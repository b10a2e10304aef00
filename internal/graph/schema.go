package graph

import (
	"fmt"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"

	"github.com/graphql-go/graphql"
)

// NewSchema builds the executable schema backed by r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	var transactionType, userType *graphql.Object

	userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"_id":            userField(graphql.NewNonNull(graphql.ID), func(u *models.User) any { return u.ID.String() }),
				"username":       userField(graphql.NewNonNull(graphql.String), func(u *models.User) any { return u.Username }),
				"name":           userField(graphql.NewNonNull(graphql.String), func(u *models.User) any { return u.Name }),
				"email":          userField(graphql.String, func(u *models.User) any { return nullableString(u.Email) }),
				"profilePicture": userField(graphql.String, func(u *models.User) any { return nullableString(u.ProfilePicture) }),
				"gender":         userField(graphql.NewNonNull(graphql.String), func(u *models.User) any { return u.Gender }),
				"transactions": &graphql.Field{
					Type: graphql.NewList(graphql.NewNonNull(transactionType)),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						user, err := userSource(p.Source)
						if err != nil {
							return nil, err
						}
						return r.UserTransactions(p.Context, user)
					},
				},
			}
		}),
	})

	transactionType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Transaction",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"_id":         transactionField(graphql.NewNonNull(graphql.ID), func(t *models.Transaction) any { return t.ID.String() }),
				"userId":      transactionField(graphql.NewNonNull(graphql.ID), func(t *models.Transaction) any { return t.UserID.String() }),
				"description": transactionField(graphql.NewNonNull(graphql.String), func(t *models.Transaction) any { return t.Description }),
				"paymentType": transactionField(graphql.NewNonNull(graphql.String), func(t *models.Transaction) any { return t.PaymentType }),
				"category":    transactionField(graphql.NewNonNull(graphql.String), func(t *models.Transaction) any { return t.Category }),
				"amount":      transactionField(graphql.NewNonNull(graphql.Float), func(t *models.Transaction) any { return t.Amount }),
				"location":    transactionField(graphql.String, func(t *models.Transaction) any { return nullableString(t.Location) }),
				"date":        transactionField(graphql.NewNonNull(graphql.String), func(t *models.Transaction) any { return t.FormattedDate() }),
				"user": &graphql.Field{
					Type: graphql.NewNonNull(userType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						tx, err := transactionSource(p.Source)
						if err != nil {
							return nil, err
						}
						return nilIfNoUser(r.TransactionUser(p.Context, tx))
					},
				},
			}
		}),
	})

	categoryStatisticsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryStatistics",
		Fields: graphql.Fields{
			"category":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"totalAmount": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	logoutResponseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LogoutResponse",
		Fields: graphql.Fields{
			"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	createTransactionInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateTransactionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"paymentType": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"category":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"amount":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"location":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"date":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	updateTransactionInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateTransactionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"transactionId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"description":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"paymentType":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"category":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"amount":        &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"location":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"date":          &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	signUpInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SignUpInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"gender":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	loginInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LoginInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"transactions": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(transactionType)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Transactions(p.Context)
				},
			},
			"transaction": &graphql.Field{
				Type: transactionType,
				Args: graphql.FieldConfigArgument{
					"transactionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNoTransaction(r.Transaction(p.Context, stringArg(p.Args, "transactionId")))
				},
			},
			"categoryStatistics": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(categoryStatisticsType)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.CategoryStatistics(p.Context)
				},
			},
			"authUser": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNoUser(r.AuthUser(p.Context))
				},
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNoUser(r.User(p.Context, stringArg(p.Args, "userId")))
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createTransaction": &graphql.Field{
				Type: graphql.NewNonNull(transactionType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createTransactionInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNoTransaction(r.CreateTransaction(p.Context, createTransactionArgs(inputArg(p.Args))))
				},
			},
			"updateTransaction": &graphql.Field{
				Type: graphql.NewNonNull(transactionType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateTransactionInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNoTransaction(r.UpdateTransaction(p.Context, updateTransactionArgs(inputArg(p.Args))))
				},
			},
			"deleteTransaction": &graphql.Field{
				Type: graphql.NewNonNull(transactionType),
				Args: graphql.FieldConfigArgument{
					"transactionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNoTransaction(r.DeleteTransaction(p.Context, stringArg(p.Args, "transactionId")))
				},
			},
			"getAIResponse": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.AIResponse(p.Context)
				},
			},
			"signUp": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(signUpInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return nilIfNoUser(r.SignUp(p.Context, signUpArgs(inputArg(p.Args))))
				},
			},
			"login": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(loginInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := inputArg(p.Args)
					return nilIfNoUser(r.Login(p.Context, dto.LoginInput{
						Username: stringArg(in, "username"),
						Password: stringArg(in, "password"),
					}))
				},
			},
			"logout": &graphql.Field{
				Type: logoutResponseType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					resp, err := r.Logout(p.Context)
					if resp == nil {
						return nil, err
					}
					return resp, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func transactionField(t graphql.Output, get func(*models.Transaction) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			tx, err := transactionSource(p.Source)
			if err != nil {
				return nil, err
			}
			return get(tx), nil
		},
	}
}

func userField(t graphql.Output, get func(*models.User) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			user, err := userSource(p.Source)
			if err != nil {
				return nil, err
			}
			return get(user), nil
		},
	}
}

func transactionSource(src interface{}) (*models.Transaction, error) {
	switch v := src.(type) {
	case *models.Transaction:
		return v, nil
	case models.Transaction:
		return &v, nil
	default:
		return nil, fmt.Errorf("unexpected transaction source %T", src)
	}
}

func userSource(src interface{}) (*models.User, error) {
	switch v := src.(type) {
	case *models.User:
		return v, nil
	case models.User:
		return &v, nil
	default:
		return nil, fmt.Errorf("unexpected user source %T", src)
	}
}

// nilIfNoTransaction and nilIfNoUser turn typed nil pointers into untyped
// nils so the executor renders null.
func nilIfNoTransaction(tx *models.Transaction, err error) (interface{}, error) {
	if tx == nil {
		return nil, err
	}
	return tx, err
}

func nilIfNoUser(user *models.User, err error) (interface{}, error) {
	if user == nil {
		return nil, err
	}
	return user, err
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
