package workflow

import (
	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/model"
)

// DocumentsSchema is the output contract of a document run: one nullable
// object per known document type, every declared field required and nullable.
func DocumentsSchema() *model.Schema {
	root := &model.Schema{
		Type:       model.TypeObject,
		Properties: make(map[string]*model.Schema, len(validation.KnownTypes)),
	}

	for _, t := range validation.KnownTypes {
		declared := validation.Fields(t)
		obj := &model.Schema{
			Type:       model.TypeObject,
			Nullable:   true,
			Properties: make(map[string]*model.Schema, len(declared)),
		}
		for _, f := range declared {
			obj.Properties[f.Name] = fieldSchema(f.Kind)
			obj.Required = append(obj.Required, f.Name)
		}
		root.Properties[string(t)] = obj
		root.Required = append(root.Required, string(t))
	}

	return root
}

func fieldSchema(k validation.FieldKind) *model.Schema {
	switch k {
	case validation.KindCount:
		return &model.Schema{Type: model.TypeInteger, Nullable: true}
	default:
		// Amounts travel as text so the separators survive for normalization.
		return &model.Schema{Type: model.TypeString, Nullable: true}
	}
}

// PhotosSchema is the output contract of a photo inspection.
func PhotosSchema() *model.Schema {
	ripeness := make([]string, len(photos.RipenessValues))
	for i, r := range photos.RipenessValues {
		ripeness[i] = string(r)
	}

	row := &model.Schema{
		Type: model.TypeObject,
		Properties: map[string]*model.Schema{
			"photo_path":       {Type: model.TypeString},
			"product_detected": {Type: model.TypeString},
			"confidence":       {Type: model.TypeNumber},
			"ripeness":         {Type: model.TypeString, Enum: ripeness},
			"issues":           {Type: model.TypeArray, Items: &model.Schema{Type: model.TypeString}},
			"export_ready":     {Type: model.TypeBoolean},
			"notes":            {Type: model.TypeString},
		},
		Required: []string{
			"photo_path", "product_detected", "confidence", "ripeness",
			"issues", "export_ready", "notes",
		},
	}

	return &model.Schema{
		Type: model.TypeObject,
		Properties: map[string]*model.Schema{
			"per_photo": {Type: model.TypeArray, Items: row},
			"summary":   {Type: model.TypeString},
		},
		Required: []string{"per_photo", "summary"},
	}
}
