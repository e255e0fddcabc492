package resource

import (
	"encoding/xml"

	"github.com/cockroachdb/errors"
)

const (
	// ServiceName is the SOAP service all resource operations belong to.
	ServiceName = "ResourceService"
	// ServicePath is the path of the service below the controller URL.
	ServicePath = "/soap/" + ServiceName

	opEnableNotification      = "EnableNotification"
	opGetResourceValueChanges = "GetResourceValueChanges"
	opDisableNotification     = "DisableNotification"
	opGetResourceValues       = "GetResourceValues"
	opSetResourceValues       = "SetResourceValues"
)

type wireValue struct {
	ID         ID     `xml:"id"`
	Kind       string `xml:"kind"`
	Runtime    bool   `xml:"runtime"`
	TypeString string `xml:"typeString,omitempty"`
	Data       string `xml:"data"`
}

func toWire(v Value) (wireValue, error) {
	data, err := v.data()
	if err != nil {
		return wireValue{}, err
	}

	return wireValue{
		ID:         v.id,
		Kind:       v.kind.String(),
		Runtime:    v.runtime,
		TypeString: v.typeString,
		Data:       data,
	}, nil
}

func (w wireValue) value() (Value, error) {
	if !w.ID.Valid() {
		return Value{}, errors.Newf("controller returned invalid resource ID %d", w.ID)
	}

	kind, err := ParseKind(w.Kind)
	if err != nil {
		return Value{}, errors.Wrapf(err, "resource %d", w.ID)
	}

	v, err := parseValue(w.ID, kind, w.Data)
	if err != nil {
		return Value{}, err
	}

	return v.WithRuntime(w.Runtime).WithTypeString(w.TypeString), nil
}

func fromWireValues(in []wireValue) ([]Value, error) {
	out := make([]Value, 0, len(in))
	for _, w := range in {
		v, err := w.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type enableNotificationRequest struct {
	XMLName xml.Name `xml:"urn:homectl:resource EnableNotification"`
	IDs     []ID     `xml:"ids>id"`
}

type enableNotificationResponse struct {
	XMLName xml.Name    `xml:"EnableNotificationResponse"`
	Values  []wireValue `xml:"values>value"`
}

type getResourceValueChangesRequest struct {
	XMLName xml.Name `xml:"urn:homectl:resource GetResourceValueChanges"`
	Timeout int      `xml:"timeout"`
}

type getResourceValueChangesResponse struct {
	XMLName xml.Name    `xml:"GetResourceValueChangesResponse"`
	Values  []wireValue `xml:"values>value"`
}

type disableNotificationRequest struct {
	XMLName xml.Name `xml:"urn:homectl:resource DisableNotification"`
	IDs     []ID     `xml:"ids>id"`
}

type disableNotificationResponse struct {
	XMLName xml.Name `xml:"DisableNotificationResponse"`
	Result  bool     `xml:"result"`
}

type getResourceValuesRequest struct {
	XMLName xml.Name `xml:"urn:homectl:resource GetResourceValues"`
	IDs     []ID     `xml:"ids>id"`
}

type getResourceValuesResponse struct {
	XMLName xml.Name    `xml:"GetResourceValuesResponse"`
	Values  []wireValue `xml:"values>value"`
}

type setResourceValuesRequest struct {
	XMLName xml.Name    `xml:"urn:homectl:resource SetResourceValues"`
	Values  []wireValue `xml:"values>value"`
}

type setResourceValuesResponse struct {
	XMLName xml.Name `xml:"SetResourceValuesResponse"`
	Result  bool     `xml:"result"`
}
