package wsdl

import (
	"fmt"

	"github.com/mcsuka/xml-xsd-json/pkg/soap"
)

// Operation is what a gateway needs to call a SOAP operation.
type Operation struct {
	Name       string
	SOAPAction string
	Version    soap.Version
	Style      string

	// Request and Response are the root elements of the message bodies.
	// Response is zero for one-way operations.
	Request  QName
	Response QName

	// Address is the soap:address of the first port using the binding.
	Address string
}

// Operation resolves an operation by name. The first SOAP binding that
// implements the operation supplies the soapAction and SOAP version.
func (d *Definitions) Operation(name string) (Operation, error) {
	for _, pt := range d.PortTypes {
		for _, op := range pt.Operations {
			if op.Name != name {
				continue
			}
			res := Operation{Name: name, Version: soap.SOAP11, Style: "document"}

			var err error
			if res.Request, err = d.rootElement(op.Input); err != nil {
				return Operation{}, err
			}
			if !op.Output.IsZero() {
				if res.Response, err = d.rootElement(op.Output); err != nil {
					return Operation{}, err
				}
			}

			if b, bop, ok := d.binding(pt.Name, name); ok {
				res.SOAPAction = bop.SOAPAction
				res.Version = b.Version
				res.Style = bop.Style
				res.Address = d.address(b.Name)
			}
			return res, nil
		}
	}
	return Operation{}, fmt.Errorf("%w: %s in %s", ErrOperationNotFound, name, d.Location)
}

// rootElement returns the element of the first element part of a message.
func (d *Definitions) rootElement(message QName) (QName, error) {
	msg, ok := d.Message(message.Local)
	if !ok {
		return QName{}, &Error{Location: d.Location, Message: "message " + message.Local + " is not defined"}
	}
	for _, p := range msg.Parts {
		if !p.Element.IsZero() {
			return p.Element, nil
		}
	}
	return QName{}, &Error{Location: d.Location, Message: "message " + msg.Name + " has no element part"}
}

func (d *Definitions) binding(portType, operation string) (Binding, BindingOperation, bool) {
	for _, b := range d.Bindings {
		if b.Type.Local != portType {
			continue
		}
		for _, bop := range b.Operations {
			if bop.Name == operation {
				return b, bop, true
			}
		}
	}
	return Binding{}, BindingOperation{}, false
}

func (d *Definitions) address(binding string) string {
	for _, svc := range d.Services {
		for _, p := range svc.Ports {
			if p.Binding.Local == binding {
				return p.Address
			}
		}
	}
	return ""
}
