package mongo

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// listingDoc is the stored listing shape. IDs are ObjectIDs when they are
// valid hex and plain strings otherwise.
type listingDoc struct {
	ID          any          `bson:"_id"`
	Name        string       `bson:"name"`
	Description string       `bson:"description"`
	Type        string       `bson:"type"`
	Gender      string       `bson:"gender"`
	Amenities   []string     `bson:"amenities"`
	Price       float64      `bson:"price"`
	Distance    float64      `bson:"distance"`
	Available   int          `bson:"available"`
	KeyMoney    *float64     `bson:"keyMoney,omitempty"`
	Status      string       `bson:"status"`
	PayStatus   string       `bson:"payStatus"`
	Owner       string       `bson:"owner"`
	BoardingID  any          `bson:"boardingID"`
	CreatedAt   time.Time    `bson:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt"`
	Boarding    *boardingDoc `bson:"boarding,omitempty"` // filled by $lookup
}

type boardingDoc struct {
	ID          any      `bson:"_id"`
	Name        string   `bson:"name"`
	Address     string   `bson:"address"`
	Description string   `bson:"description"`
	Amenities   []string `bson:"amenities"`
	Status      string   `bson:"status"`
	Owner       string   `bson:"owner"`
}

// docID encodes an external ID the way it is stored.
func docID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func toListingDoc(l model.Listing) listingDoc {
	var boardingID any = ""
	if l.BoardingID != "" {
		boardingID = docID(l.BoardingID)
	}
	return listingDoc{
		ID:          docID(l.ID),
		Name:        l.Name,
		Description: l.Description,
		Type:        l.Type,
		Gender:      l.Gender,
		Amenities:   l.Amenities,
		Price:       l.Price,
		Distance:    l.Distance,
		Available:   l.Available,
		KeyMoney:    l.KeyMoney,
		Status:      l.Status,
		PayStatus:   l.PayStatus,
		Owner:       l.Owner,
		BoardingID:  boardingID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toBoardingDoc(b model.Boarding) boardingDoc {
	return boardingDoc{
		ID:          docID(b.ID),
		Name:        b.Name,
		Address:     b.Address,
		Description: b.Description,
		Amenities:   b.Amenities,
		Status:      b.Status,
		Owner:       b.Owner,
	}
}

func (d listingDoc) view() model.ListingView {
	view := model.ListingView{Listing: model.Listing{
		ID:          idString(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Type:        d.Type,
		Gender:      d.Gender,
		Amenities:   d.Amenities,
		Price:       d.Price,
		Distance:    d.Distance,
		Available:   d.Available,
		KeyMoney:    d.KeyMoney,
		Status:      d.Status,
		PayStatus:   d.PayStatus,
		Owner:       d.Owner,
		BoardingID:  idString(d.BoardingID),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}}
	if d.Boarding != nil {
		view.Boarding = &model.Boarding{
			ID:          idString(d.Boarding.ID),
			Name:        d.Boarding.Name,
			Address:     d.Boarding.Address,
			Description: d.Boarding.Description,
			Amenities:   d.Boarding.Amenities,
			Status:      d.Boarding.Status,
			Owner:       d.Boarding.Owner,
		}
	}
	return view
}

// matchFilter builds the listing-only part of the predicate.
func matchFilter(filter services.ListingFilter) bson.M {
	owners := filter.Owners
	if owners == nil {
		owners = []string{}
	}
	query := bson.M{
		"available": bson.M{"$gte": 0},
		"status":    model.StatusApproved,
		"payStatus": model.PayStatusDone,
		"owner":     bson.M{"$in": owners},
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Gender != "" {
		query["gender"] = filter.Gender
	}
	// A missing keyMoney matches neither comparison
	switch filter.KeyMoney {
	case services.KeyMoneyWith:
		query["keyMoney"] = bson.M{"$gt": 0}
	case services.KeyMoneyWithout:
		query["keyMoney"] = 0
	}
	if r := rangeQuery(filter.PriceMin, filter.PriceMax); r != nil {
		query["price"] = r
	}
	if r := rangeQuery(filter.DistanceMin, filter.DistanceMax); r != nil {
		query["distance"] = r
	}
	return query
}

func rangeQuery(min, max *float64) bson.M {
	if min == nil && max == nil {
		return nil
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	return r
}

// textFilter matches text as a case-insensitive literal across listing and
// joined boarding fields.
func textFilter(text string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	fields := []string{"name", "description", "type", "boarding.name", "boarding.address", "boarding.description"}
	alternatives := make(bson.A, 0, len(fields))
	for _, f := range fields {
		alternatives = append(alternatives, bson.M{f: pattern})
	}
	return bson.M{"$or": alternatives}
}

func sortSpec(order services.SortOrder) bson.D {
	var field string
	dir := 1
	switch order {
	case services.SortNameAsc:
		field = "name"
	case services.SortNameDesc:
		field, dir = "name", -1
	case services.SortPriceAsc:
		field = "price"
	case services.SortPriceDesc:
		field, dir = "price", -1
	case services.SortDistanceAsc:
		field = "distance"
	case services.SortDistanceDesc:
		field, dir = "distance", -1
	default:
		field, dir = "createdAt", -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

// joinStages attaches the referenced boarding as "boarding".
func joinStages(boardingCollection string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         boardingCollection,
			"localField":   "boardingID",
			"foreignField": "_id",
			"as":           "boarding",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$boarding", "preserveNullAndEmptyArrays": true}}},
	}
}

func filterStages(filter services.ListingFilter, boardingCollection string) mongo.Pipeline {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: matchFilter(filter)}}}
	pipeline = append(pipeline, joinStages(boardingCollection)...)
	if filter.Text != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: textFilter(filter.Text)}})
	}
	return pipeline
}

// findPipeline selects, joins, orders and pages listings.
func findPipeline(filter services.ListingFilter, boardingCollection string) mongo.Pipeline {
	pipeline := filterStages(filter, boardingCollection)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortSpec(filter.Sort)}})
	if filter.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(filter.Skip)}})
	}
	if filter.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(filter.Limit)}})
	}
	return pipeline
}

// countPipeline counts every match, ignoring paging.
func countPipeline(filter services.ListingFilter, boardingCollection string) mongo.Pipeline {
	pipeline := filterStages(filter, boardingCollection)
	return append(pipeline, bson.D{{Key: "$count", Value: "total"}})
}

// byIDPipeline resolves one listing with its boarding.
func byIDPipeline(id string, boardingCollection string) mongo.Pipeline {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": docID(id)}}}}
	pipeline = append(pipeline, joinStages(boardingCollection)...)
	return append(pipeline, bson.D{{Key: "$limit", Value: int64(1)}})
}
