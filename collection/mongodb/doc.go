// Package mongodb adapts the official MongoDB driver to the collection
// provider contract.
//
//	client, err := mongodb.Connect(ctx, mongodb.Config{
//		URI:      "mongodb://localhost:27017",
//		Database: "app",
//	}, log)
//	defer client.Close(ctx)
//
//	reg := collection.NewRegistry()
//	reg.Register("orders", client.Collection("orders"))
package mongodb
